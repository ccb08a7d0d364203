package rpcapi

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/blocks"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/mongodb"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/params"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/worker"
	rpcjson "github.com/gorilla/rpc/v2/json2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	err error
}

func (r *fakeReader) ReadBlock(ctx context.Context, number blocks.BlockNumber) (*blocks.BlockResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	if number <= 0 {
		return nil, &blocks.ValidationError{Field: "blockNumber", Err: blocks.ErrInvalidBlockNumber}
	}
	return &blocks.BlockResult{Number: number, ID: fmt.Sprintf("B%d", number)}, nil
}

type fakeTracker struct {
	marker *blocks.IrreversibleMarker
	err    error
}

func (t *fakeTracker) Latest(ctx context.Context) (*blocks.IrreversibleMarker, error) {
	return t.marker, t.err
}

type fakeStatus struct{}

func (fakeStatus) GetScanStatus() worker.ScanStatus {
	return worker.ScanStatus{NextBlock: 8, LastBlock: 7, LastBlockID: "B7", BlocksRead: 3}
}

func errorCode(t *testing.T, err error) rpcjson.ErrorCode {
	t.Helper()
	var rpcErr *rpcjson.Error
	require.True(t, errors.As(err, &rpcErr), "error %v", err)
	return rpcErr.Code
}

func TestReadBlock(t *testing.T) {
	api := NewRPCAPI(&fakeReader{}, &fakeTracker{}, nil)
	r := httptest.NewRequest("POST", "/rpc", nil)

	var result blocks.BlockResult
	number := int64(5)
	require.NoError(t, api.ReadBlock(r, &number, &result))
	assert.Equal(t, "B5", result.ID)

	number = 0
	err := api.ReadBlock(r, &number, &result)
	assert.Equal(t, ErrCodeInvalidParams, errorCode(t, err))
}

func TestReadBlockErrors(t *testing.T) {
	r := httptest.NewRequest("POST", "/rpc", nil)
	tests := []struct {
		err  error
		want rpcjson.ErrorCode
	}{
		{&blocks.IntegrationError{Op: "get ledger", Err: errors.New("timeout")}, ErrCodeIntegration},
		{&blocks.IntegrationError{Op: "resolve transaction id", Err: blocks.ErrUnknownDuplicate}, ErrCodeUnknownDuplicate},
		{errors.New("unexpected"), rpcjson.E_SERVER},
	}
	for _, test := range tests {
		api := NewRPCAPI(&fakeReader{err: test.err}, &fakeTracker{}, nil)
		number := int64(1)
		err := api.ReadBlock(r, &number, new(blocks.BlockResult))
		assert.Equal(t, test.want, errorCode(t, err), "error %v", test.err)
	}
}

func TestGetIrreversible(t *testing.T) {
	r := httptest.NewRequest("POST", "/rpc", nil)

	marker := &blocks.IrreversibleMarker{Number: 10, ID: "B10"}
	api := NewRPCAPI(&fakeReader{}, &fakeTracker{marker: marker}, nil)
	var result blocks.IrreversibleMarker
	require.NoError(t, api.GetIrreversible(r, &RPCNullArgs{}, &result))
	assert.Equal(t, *marker, result)

	api = NewRPCAPI(&fakeReader{}, &fakeTracker{err: fmt.Errorf("%w. Node state: connected", blocks.ErrRetryRequired)}, nil)
	err := api.GetIrreversible(r, &RPCNullArgs{}, &result)
	assert.Equal(t, ErrCodeRetryRequired, errorCode(t, err))
}

func TestGetScanStatus(t *testing.T) {
	r := httptest.NewRequest("POST", "/rpc", nil)

	var result worker.ScanStatus
	err := NewRPCAPI(&fakeReader{}, &fakeTracker{}, nil).GetScanStatus(r, &RPCNullArgs{}, &result)
	assert.Equal(t, ErrScanDisabled, err)

	require.NoError(t, NewRPCAPI(&fakeReader{}, &fakeTracker{}, fakeStatus{}).GetScanStatus(r, &RPCNullArgs{}, &result))
	assert.Equal(t, "B7", result.LastBlockID)
	assert.Equal(t, blocks.BlockNumber(8), result.NextBlock)
}

func TestGetVersionInfo(t *testing.T) {
	var result params.VersionInfo
	api := NewRPCAPI(&fakeReader{}, &fakeTracker{}, nil)
	require.NoError(t, api.GetVersionInfo(httptest.NewRequest("POST", "/rpc", nil), &RPCNullArgs{}, &result))
	assert.Equal(t, params.GetVersionInfo().Version, result.Version)
}

func TestStorageNotConnected(t *testing.T) {
	r := httptest.NewRequest("POST", "/rpc", nil)
	api := NewRPCAPI(&fakeReader{}, &fakeTracker{}, nil)

	number := int64(1)
	assert.Equal(t, mongodb.ErrNotConnected, api.GetBlock(r, &number, new(mongodb.MgoBlock)))
	assert.Equal(t, mongodb.ErrNotConnected, api.GetLatestBlock(r, &RPCNullArgs{}, new(mongodb.MgoBlock)))
	txid := "97A020A130F8291A2DECD187AC5DA6D636EE7B3442175D30F9E42C082FD8EB13"
	assert.Equal(t, mongodb.ErrNotConnected, api.GetTransaction(r, &txid, new(TransactionInfo)))
	assert.Equal(t, mongodb.ErrNotConnected, api.GetStoredIrreversible(r, &RPCNullArgs{}, new(mongodb.MgoIrreversible)))
}
