package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"simorder/logutils"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		DBName   string `yaml:"dbname"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
		TimeZone string `yaml:"TimeZone"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Auth struct {
		TokenSecret           string `yaml:"tokenSecret"`
		AccessTokenExpiryHour int    `yaml:"accessTokenExpiryHour"`
		StubLogin             bool   `yaml:"stubLogin"`
		PlatformAdminEmail    string `yaml:"platformAdminEmail"`
	} `yaml:"auth"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

// initConfig reads ./etc/config.yaml if present and then applies the
// SIMORDER_* environment overrides, so the process can run from environment
// alone (ConfigMap-less deployments).
func initConfig() *Config {
	// 读取配置文件
	config := &Config{}
	configPath := "./etc/config.yaml"

	if err := readConfig(configPath, config); err != nil {
		if !os.IsNotExist(err) {
			logutils.Log.Error("init config", err)
			panic(err)
		}
		logutils.Log.Warnf("config file %s not found, using environment only", configPath)
	}
	applyDefaults(config)
	applyEnv(config)
	return config
}

func readConfig(filePath string, config *Config) error {
	// 读取 YAML 配置文件
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	// 解析 YAML 数据到结构体
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return err
	}
	return nil
}

func applyDefaults(c *Config) {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Postgres.SSLMode == "" {
		c.Postgres.SSLMode = "disable"
	}
	if c.Postgres.TimeZone == "" {
		c.Postgres.TimeZone = "Asia/Shanghai"
	}
	if c.Auth.AccessTokenExpiryHour == 0 {
		c.Auth.AccessTokenExpiryHour = 1
	}
	if c.Auth.PlatformAdminEmail == "" {
		c.Auth.PlatformAdminEmail = "admin@simorder.local"
	}
}

func applyEnv(c *Config) {
	setIfPresent := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setIfPresent(&c.Server.Port, "SIMORDER_PORT")
	setIfPresent(&c.Postgres.Host, "SIMORDER_PG_HOST")
	setIfPresent(&c.Postgres.Port, "SIMORDER_PG_PORT")
	setIfPresent(&c.Postgres.DBName, "SIMORDER_PG_DBNAME")
	setIfPresent(&c.Postgres.User, "SIMORDER_PG_USER")
	setIfPresent(&c.Postgres.Password, "SIMORDER_PG_PASSWORD")
	setIfPresent(&c.Redis.Addr, "SIMORDER_REDIS_ADDR")
	setIfPresent(&c.Redis.Password, "SIMORDER_REDIS_PASSWORD")
	setIfPresent(&c.Auth.TokenSecret, "SIMORDER_TOKEN_SECRET")
	setIfPresent(&c.Auth.PlatformAdminEmail, "SIMORDER_ADMIN_EMAIL")
	if v := os.Getenv("SIMORDER_STUB_LOGIN"); v != "" {
		stub, err := strconv.ParseBool(v)
		if err == nil {
			c.Auth.StubLogin = stub
		}
	}
}

// DSN builds the postgres connection string from the current config.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.Postgres.Host, c.Postgres.User, c.Postgres.Password,
		c.Postgres.DBName, c.Postgres.Port, c.Postgres.SSLMode, c.Postgres.TimeZone)
}
