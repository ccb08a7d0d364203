package params

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

func errConfigNotExist(configFile string) error {
	return fmt.Errorf("config file %v not exist", configFile)
}

func errDecodeConfig(err error) error {
	return fmt.Errorf("toml DecodeFile: %w", err)
}

// CheckConfig check config
func CheckConfig() (err error) {
	config := GetConfig()
	if config == nil {
		return errors.New("config is not loaded")
	}
	if config.Identifier == "" {
		return errors.New("reader must config non empty 'Identifier'")
	}
	if config.Node == nil {
		return errors.New("reader must config 'Node'")
	}
	err = config.Node.CheckConfig()
	if err != nil {
		return err
	}
	err = config.Reader.CheckConfig()
	if err != nil {
		return err
	}
	if config.MongoDB != nil {
		err = config.MongoDB.CheckConfig()
		if err != nil {
			return err
		}
	}
	if config.Redis != nil {
		err = config.Redis.CheckConfig()
		if err != nil {
			return err
		}
	}
	if config.APIServer != nil {
		err = config.APIServer.CheckConfig()
		if err != nil {
			return err
		}
	}
	return nil
}

// CheckConfig check node config
func (c *NodeConfig) CheckConfig() error {
	if c.NodeURL == "" {
		return errors.New("node must config 'NodeURL'")
	}
	u, err := url.Parse(c.NodeURL)
	if err != nil {
		return fmt.Errorf("wrong node url %v: %w", c.NodeURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "ws", "wss":
	default:
		return fmt.Errorf("unsupported node url scheme '%v'", u.Scheme)
	}
	if c.RPCTimeout < 0 {
		return errors.New("node 'RPCTimeout' must not be negative")
	}
	return nil
}

// CheckConfig check scan config
func (c *ScanConfig) CheckConfig() error {
	if c.StartBlock < 0 {
		return errors.New("reader 'StartBlock' must not be negative")
	}
	if c.MaxRetryInterval < c.RetryInterval {
		return fmt.Errorf("reader 'MaxRetryInterval' %v is less than 'RetryInterval' %v", c.MaxRetryInterval, c.RetryInterval)
	}
	return nil
}

// CheckConfig check mongodb config
func (c *MongoDBConfig) CheckConfig() error {
	if c.DBURL == "" && len(c.DBURLs) == 0 {
		return errors.New("mongodb must config 'DBURL' or 'DBURLs'")
	}
	if c.DBName == "" {
		return errors.New("mongodb must config 'DBName'")
	}
	return nil
}

// CheckConfig check redis config
func (c *RedisConfig) CheckConfig() error {
	if c.Addr == "" {
		return errors.New("redis must config 'Addr'")
	}
	if c.DB < 0 {
		return errors.New("redis 'DB' must not be negative")
	}
	return nil
}

// CheckConfig check api server config
func (c *APIServerConfig) CheckConfig() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("wrong api server port %v", c.Port)
	}
	if c.MaxRequestsLimit < 0 {
		return errors.New("api server 'MaxRequestsLimit' must not be negative")
	}
	return nil
}
