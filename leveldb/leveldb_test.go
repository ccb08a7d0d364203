package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanCursor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cursor")
	db, err := New(path, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())

	_, exist, err := db.GetScanCursor()
	require.NoError(t, err)
	assert.False(t, exist)

	assert.Error(t, db.SetScanCursor(0))
	require.NoError(t, db.SetScanCursor(45487825))
	require.NoError(t, db.SetScanCursor(45487826))

	next, exist, err := db.GetScanCursor()
	require.NoError(t, err)
	assert.True(t, exist)
	assert.Equal(t, blocks.BlockNumber(45487826), next)
	require.NoError(t, db.Close())

	// reopen keeps the cursor
	db, err = New(path, 0, 0, true)
	require.NoError(t, err)
	defer db.Close()
	next, exist, err = db.GetScanCursor()
	require.NoError(t, err)
	assert.True(t, exist)
	assert.Equal(t, blocks.BlockNumber(45487826), next)
}

func TestIrreversible(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "cursor"), 0, 0, false)
	require.NoError(t, err)
	defer db.Close()

	marker, err := db.GetIrreversible()
	require.NoError(t, err)
	assert.Nil(t, marker)

	want := &blocks.IrreversibleMarker{Number: 45487825, ID: "0C3261AB65F318BC1727F5EC1EE768EA08E11657C328D872C387FAF0CAF3870D"}
	require.NoError(t, db.SetIrreversible(want))
	marker, err = db.GetIrreversible()
	require.NoError(t, err)
	assert.Equal(t, want, marker)
}
