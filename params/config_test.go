package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
Identifier = "ripple-blocks-reader"
DataDir = "data"

[Node]
NodeURL = "wss://s1.ripple.com"
NodeRpcUsername = "reader"
NodeRpcPassword = "secret"

[Reader]
StartBlock = 45487825
ScanInterval = 5

[MongoDB]
DBURL = "localhost:27017"
DBName = "ripple"

[Redis]
Addr = "localhost:6379"
DB = 1

[APIServer]
Port = 11600
AllowedOrigins = ["*"]
MaxRequestsLimit = 10
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0o600))
	return configFile
}

func TestDecodeConfigFile(t *testing.T) {
	config, err := DecodeConfigFile(writeConfig(t, testConfig))
	require.NoError(t, err)
	SetConfig(config)

	assert.Equal(t, "ripple-blocks-reader", GetIdentifier())
	assert.Equal(t, "wss://s1.ripple.com", GetNodeConfig().NodeURL)
	assert.Equal(t, "reader", GetNodeConfig().NodeRPCUsername)
	assert.Equal(t, "secret", GetNodeConfig().NodeRPCPassword)
	assert.Equal(t, defaultRPCTimeout, GetNodeConfig().RPCTimeout)

	scan := GetScanConfig()
	assert.Equal(t, int64(45487825), scan.StartBlock)
	assert.Equal(t, uint64(5), scan.ScanInterval)
	assert.Equal(t, uint64(defaultIrreversibleInterval), scan.IrreversibleInterval)
	assert.Equal(t, uint64(defaultRetryCount), scan.RetryCount)

	assert.Equal(t, []string{"localhost:27017"}, config.MongoDB.GetURLs())
	assert.Equal(t, 1, config.Redis.DB)
	assert.Equal(t, 11600, GetAPIPort())
	assert.True(t, filepath.IsAbs(GetDataDir()))

	assert.NoError(t, CheckConfig())
}

func TestDecodeConfigFileError(t *testing.T) {
	_, err := DecodeConfigFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = DecodeConfigFile(writeConfig(t, "Identifier = "))
	assert.Error(t, err)
}

func TestCheckConfig(t *testing.T) {
	tests := []struct {
		name   string
		config string
		ok     bool
	}{
		{"minimal", "Identifier = \"r\"\n[Node]\nNodeURL = \"http://localhost:5005\"", true},
		{"no identifier", "[Node]\nNodeURL = \"http://localhost:5005\"", false},
		{"no node", "Identifier = \"r\"", false},
		{"bad scheme", "Identifier = \"r\"\n[Node]\nNodeURL = \"tcp://localhost:5005\"", false},
		{"negative start", "Identifier = \"r\"\n[Node]\nNodeURL = \"ws://localhost:6006\"\n[Reader]\nStartBlock = -1", false},
		{"retry intervals", "Identifier = \"r\"\n[Node]\nNodeURL = \"ws://localhost:6006\"\n[Reader]\nRetryInterval = 10\nMaxRetryInterval = 5", false},
		{"mongodb no name", "Identifier = \"r\"\n[Node]\nNodeURL = \"ws://localhost:6006\"\n[MongoDB]\nDBURL = \"localhost:27017\"", false},
		{"redis no addr", "Identifier = \"r\"\n[Node]\nNodeURL = \"ws://localhost:6006\"\n[Redis]\nDB = 1", false},
		{"bad port", "Identifier = \"r\"\n[Node]\nNodeURL = \"ws://localhost:6006\"\n[APIServer]\nPort = 70000", false},
	}
	for _, test := range tests {
		config, err := DecodeConfigFile(writeConfig(t, test.config))
		require.NoError(t, err, test.name)
		SetConfig(config)
		err = CheckConfig()
		if test.ok {
			assert.NoError(t, err, test.name)
		} else {
			assert.Error(t, err, test.name)
		}
	}
}

func TestGetAPIPortDefault(t *testing.T) {
	SetConfig(&ReaderConfig{Identifier: "r"})
	assert.Equal(t, defaultAPIPort, GetAPIPort())
}

func TestExampleConfig(t *testing.T) {
	config, err := DecodeConfigFile(filepath.Join("..", "build", "config", "config-example.toml"))
	require.NoError(t, err)
	SetConfig(config)
	assert.NoError(t, CheckConfig())
	assert.Equal(t, uint64(120), GetScanConfig().MaxRetryInterval)
}
