package params

import (
	"encoding/json"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/common"
	"github.com/LykkeCity/Lykke.Bil2.Ripple.BlocksReader/log"
)

const (
	defaultAPIPort              = 11556
	defaultRPCTimeout           = 60  // seconds
	defaultScanInterval         = 3   // seconds
	defaultIrreversibleInterval = 10  // seconds
	defaultRetryCount           = 10  // times
	defaultRetryInterval        = 3   // seconds
	defaultMaxRetryInterval     = 120 // seconds
)

var (
	readerConfig      *ReaderConfig
	loadConfigStarter sync.Once
)

// ReaderConfig config items (decode from toml file)
type ReaderConfig struct {
	Identifier string
	DataDir    string           `toml:",omitempty" json:",omitempty"`
	Node       *NodeConfig      `toml:",omitempty" json:",omitempty"`
	Reader     *ScanConfig      `toml:",omitempty" json:",omitempty"`
	MongoDB    *MongoDBConfig   `toml:",omitempty" json:",omitempty"`
	Redis      *RedisConfig     `toml:",omitempty" json:",omitempty"`
	APIServer  *APIServerConfig `toml:",omitempty" json:",omitempty"`
}

// NodeConfig rippled node config
type NodeConfig struct {
	NodeURL         string
	NodeRPCUsername string `toml:"NodeRpcUsername" json:"-"`
	NodeRPCPassword string `toml:"NodeRpcPassword" json:"-"`
	RPCTimeout      int    `toml:",omitempty" json:",omitempty"` // seconds
}

// ScanConfig blocks scanning config, intervals are in seconds
type ScanConfig struct {
	StartBlock           int64
	ScanInterval         uint64 `toml:",omitempty" json:",omitempty"`
	IrreversibleInterval uint64 `toml:",omitempty" json:",omitempty"`
	RetryCount           uint64 `toml:",omitempty" json:",omitempty"`
	RetryInterval        uint64 `toml:",omitempty" json:",omitempty"`
	MaxRetryInterval     uint64 `toml:",omitempty" json:",omitempty"`
	DisableScan          bool   `toml:",omitempty" json:",omitempty"`
}

// MongoDBConfig mongodb config
type MongoDBConfig struct {
	DBURL    string   `toml:",omitempty" json:",omitempty"`
	DBURLs   []string `toml:",omitempty" json:",omitempty"`
	DBName   string
	UserName string `json:"-"`
	Password string `json:"-"`
}

// GetURLs get mongodb urls
func (c *MongoDBConfig) GetURLs() []string {
	if len(c.DBURLs) > 0 {
		return c.DBURLs
	}
	return []string{c.DBURL}
}

// RedisConfig redis config
type RedisConfig struct {
	Addr     string
	Password string `json:"-"`
	DB       int
	Channel  string `toml:",omitempty" json:",omitempty"`
}

// APIServerConfig api service config
type APIServerConfig struct {
	Port             int
	AllowedOrigins   []string
	MaxRequestsLimit int
}

// GetConfig get reader config
func GetConfig() *ReaderConfig {
	return readerConfig
}

// SetConfig set reader config
func SetConfig(config *ReaderConfig) {
	config.setDefaults()
	readerConfig = config
}

// GetIdentifier get identifier
func GetIdentifier() string {
	return GetConfig().Identifier
}

// GetNodeConfig get node config
func GetNodeConfig() *NodeConfig {
	return GetConfig().Node
}

// GetScanConfig get scan config
func GetScanConfig() *ScanConfig {
	return GetConfig().Reader
}

// GetAPIPort get api service port
func GetAPIPort() int {
	apiServer := GetConfig().APIServer
	if apiServer == nil || apiServer.Port == 0 {
		return defaultAPIPort
	}
	return apiServer.Port
}

// GetDataDir get data dir
func GetDataDir() string {
	return GetConfig().DataDir
}

// SetDataDir set data dir, overwrites the config file item
func SetDataDir(dir string) {
	if dir == "" {
		return
	}
	GetConfig().DataDir = common.AbsPath("", dir)
	log.Info("set data dir success", "datadir", GetConfig().DataDir)
}

func (c *ReaderConfig) setDefaults() {
	if c.Node != nil && c.Node.RPCTimeout <= 0 {
		c.Node.RPCTimeout = defaultRPCTimeout
	}
	if c.Reader == nil {
		c.Reader = &ScanConfig{}
	}
	scan := c.Reader
	if scan.ScanInterval == 0 {
		scan.ScanInterval = defaultScanInterval
	}
	if scan.IrreversibleInterval == 0 {
		scan.IrreversibleInterval = defaultIrreversibleInterval
	}
	if scan.RetryCount == 0 {
		scan.RetryCount = defaultRetryCount
	}
	if scan.RetryInterval == 0 {
		scan.RetryInterval = defaultRetryInterval
	}
	if scan.MaxRetryInterval == 0 {
		scan.MaxRetryInterval = defaultMaxRetryInterval
	}
	if c.DataDir != "" {
		c.DataDir = common.AbsPath("", c.DataDir)
	}
}

// LoadConfig load config
func LoadConfig(configFile string) *ReaderConfig {
	loadConfigStarter.Do(func() {
		if configFile == "" {
			log.Fatalf("LoadConfig error: no config file specified")
		}
		log.Println("Config file is", configFile)
		config, err := DecodeConfigFile(configFile)
		if err != nil {
			log.Fatalf("LoadConfig error: %v", err)
		}
		SetConfig(config)

		bs, _ := json.MarshalIndent(config, "", "  ")
		log.Println("LoadConfig finished.", string(bs))
		if err := CheckConfig(); err != nil {
			log.Fatalf("Check config failed. %v", err)
		}
		log.Info("Check config success", "configFile", configFile)
	})
	return readerConfig
}

// DecodeConfigFile decodes toml config file without checking it
func DecodeConfigFile(configFile string) (*ReaderConfig, error) {
	if !common.FileExist(configFile) {
		return nil, errConfigNotExist(configFile)
	}
	config := &ReaderConfig{}
	if _, err := toml.DecodeFile(configFile, config); err != nil {
		return nil, errDecodeConfig(err)
	}
	return config, nil
}
