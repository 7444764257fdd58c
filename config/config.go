// Package config 读取服务的 YAML 配置，并据此构建工件源、存储与病人记录源。
//
// 使用配置驱动构建工件源时，需在入口处 import _ "github.com/rushteam/cardiokit/config/builders"
// 以触发内置工件源（file、http、s3）的 init 注册。
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/cardiokit/pkg/dsl"
)

// EnvConfigPath 指定配置文件路径的环境变量
const EnvConfigPath = "CONFIG_PATH"

// DefaultPath 是未设置 CONFIG_PATH 时的配置文件路径
const DefaultPath = "config.yaml"

// Config 是服务配置
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	Artifacts  ArtifactsConfig  `yaml:"artifacts"`
	Store      StoreConfig      `yaml:"store"`
	Feast      FeastConfig      `yaml:"feast"`
	Validation ValidationConfig `yaml:"validation"`
	Ensemble   EnsembleConfig   `yaml:"ensemble"`
	Monitor    MonitorConfig    `yaml:"monitor"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug / info / warn / error
	Format string `yaml:"format"` // json / text
}

// ArtifactsConfig 描述拟合工件的位置，Type 为已注册的工件源类型
type ArtifactsConfig struct {
	Type    string        `yaml:"type"`
	Dir     string        `yaml:"dir"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	S3      S3Config      `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// StoreConfig 结果缓存与报告存储
type StoreConfig struct {
	Type      string        `yaml:"type"` // memory / redis
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`  // 0 表示不缓存推理结果
	ReportTTL time.Duration `yaml:"report_ttl"`
}

// FeastConfig 病人记录的在线特征存储
type FeastConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Endpoint string        `yaml:"endpoint"`
	Project  string        `yaml:"project"`
	View     string        `yaml:"view"`
	Entity   string        `yaml:"entity"`
	Token    string        `yaml:"token"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ValidationConfig struct {
	Rules []dsl.Rule `yaml:"rules"`
}

type EnsembleConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type MonitorConfig struct {
	MaxSamples int `yaml:"max_samples"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
		},
		Log:       LogConfig{Level: "info", Format: "json"},
		Artifacts: ArtifactsConfig{Type: "file", Dir: "artifacts", Timeout: 10 * time.Second},
		Store:     StoreConfig{Type: "memory", CacheTTL: 10 * time.Minute, ReportTTL: 24 * time.Hour},
		Feast: FeastConfig{
			Endpoint: "localhost:6565",
			View:     "patient_vitals",
			Entity:   "patient_id",
			Timeout:  2 * time.Second,
		},
		Monitor: MonitorConfig{MaxSamples: 1000},
	}
}

// Path 返回配置文件路径：CONFIG_PATH 或 config.yaml
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load 读取 YAML 配置，未出现的字段保留默认值。文件内容中的 ${VAR} 会按环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(data)
}

// Parse 解析 YAML 配置内容
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置的必填项
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	switch c.Store.Type {
	case "", "memory":
	case "redis":
		if c.Store.Addr == "" {
			return fmt.Errorf("store.addr is required for redis")
		}
	default:
		return fmt.Errorf("unknown store.type %q", c.Store.Type)
	}
	if c.Feast.Enabled && (c.Feast.Endpoint == "" || c.Feast.View == "") {
		return fmt.Errorf("feast.endpoint and feast.view are required when feast is enabled")
	}
	if c.Ensemble.MaxConcurrent < 0 {
		return fmt.Errorf("ensemble.max_concurrent must be >= 0")
	}
	return nil
}
