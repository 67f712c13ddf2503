// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// DefaultAPIConfigPath API 与 CLI 共用的默认配置文件
const DefaultAPIConfigPath = "configs/api.yaml"

// Config 应用配置结构体
type Config struct {
	API        APIConfig        `mapstructure:"api"`
	Model      ModelConfig      `mapstructure:"model"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Memory     MemoryConfig     `mapstructure:"memory"`
	Search     SearchConfig     `mapstructure:"search"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
	RateLimits RateLimitsConfig `mapstructure:"rate_limits"`
	Log        LogConfig        `mapstructure:"log"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

// APIConfig API 服务配置
type APIConfig struct {
	Port        int        `mapstructure:"port"`
	Host        string     `mapstructure:"host"`
	Version     string     `mapstructure:"version"`
	StreamDelay string     `mapstructure:"stream_delay"` // 流式输出每个词的间隔，如 "50ms"
	CORS        CORSConfig `mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	Enable       bool     `mapstructure:"enable"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// ModelConfig 模型配置（单一 provider，凭证缺失时 API 仍可启动）
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"` // gemini | openai | claude
	Name        string  `mapstructure:"name"`
	APIKey      string  `mapstructure:"api_key"`
	APIKeyEnv   string  `mapstructure:"api_key_env"` // 通过 secrets store 解析凭证时使用的 key
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
}

// ScheduleConfig 任务排期配置
type ScheduleConfig struct {
	Weeks    int    `mapstructure:"weeks"`
	File     string `mapstructure:"file"`      // console 流程输出文件
	MaxTasks int    `mapstructure:"max_tasks"` // HTTP 流程参与排期的最大步骤数
}

// MemoryConfig 用户记忆存储配置
type MemoryConfig struct {
	Type        string `mapstructure:"type"` // file | redis | postgres
	Dir         string `mapstructure:"dir"`
	DefaultFile string `mapstructure:"default_file"` // console 流程使用的单文件
	Addr        string `mapstructure:"addr"`
	DB          int    `mapstructure:"db"`
	Password    string `mapstructure:"password"`
	KeyPrefix   string `mapstructure:"key_prefix"`
	DSN         string `mapstructure:"dsn"`
}

// SearchConfig 资源检索配置
type SearchConfig struct {
	Provider   string `mapstructure:"provider"` // duckduckgo | none
	BaseURL    string `mapstructure:"base_url"`
	Timeout    string `mapstructure:"timeout"`
	MaxResults int    `mapstructure:"max_results"`
	UserAgent  string `mapstructure:"user_agent"`
}

// SecretsConfig 凭证来源配置
type SecretsConfig struct {
	Provider string      `mapstructure:"provider"` // env | memory | vault
	Vault    VaultConfig `mapstructure:"vault"`
}

// VaultConfig Vault 连接配置
type VaultConfig struct {
	Address    string `mapstructure:"address"`
	Token      string `mapstructure:"token"`
	PathPrefix string `mapstructure:"path_prefix"`
}

// RateLimitsConfig 限流配置（LLM）
type RateLimitsConfig struct {
	LLM map[string]LLMRateLimitConfig `mapstructure:"llm"`
}

// LLMRateLimitConfig 单个 LLM Provider 的限流配置
type LLMRateLimitConfig struct {
	TokensPerMinute   int     `mapstructure:"tokens_per_minute"`
	RequestsPerMinute float64 `mapstructure:"requests_per_minute"`
	MaxConcurrent     int     `mapstructure:"max_concurrent"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MonitoringConfig 监控配置
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

// PrometheusConfig Prometheus 配置
type PrometheusConfig struct {
	Enable bool `mapstructure:"enable"`
}

// TracingConfig 链路追踪配置（OpenTelemetry）
type TracingConfig struct {
	Enable         bool   `mapstructure:"enable"`
	ServiceName    string `mapstructure:"service_name"`
	ExportEndpoint string `mapstructure:"export_endpoint"`
	Insecure       bool   `mapstructure:"insecure"`
}

// Default 返回无配置文件时使用的默认配置
func Default() *Config {
	return &Config{
		API: APIConfig{
			Port:        8000,
			Host:        "0.0.0.0",
			Version:     "1.0.0",
			StreamDelay: "50ms",
			CORS: CORSConfig{
				Enable: true,
				AllowOrigins: []string{
					"http://localhost:3000",
					"http://localhost:5173",
					"https://kariyerajani.netlify.app",
				},
			},
		},
		Model: ModelConfig{
			Provider:    "gemini",
			Name:        "gemini-2.5-flash",
			APIKey:      "${GOOGLE_GEMINI_API_KEY}",
			APIKeyEnv:   "GOOGLE_GEMINI_API_KEY",
			Temperature: 0.5,
		},
		Schedule: ScheduleConfig{
			Weeks:    4,
			File:     "career_schedule.json",
			MaxTasks: 10,
		},
		Memory: MemoryConfig{
			Type:        "file",
			Dir:         ".",
			DefaultFile: "user_memory.json",
			KeyPrefix:   "career:memory:",
		},
		Search: SearchConfig{
			Provider:   "duckduckgo",
			Timeout:    "10s",
			MaxResults: 5,
		},
		Secrets: SecretsConfig{Provider: "env"},
		Log:     LogConfig{Level: "info", Format: "json"},
		Monitoring: MonitoringConfig{
			Tracing: TracingConfig{ServiceName: "career-planner"},
		},
	}
}

// LoadConfig 加载配置文件，未出现在文件中的字段保留默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置文件: %w", err)
	}

	replaceEnvVars(cfg)
	return cfg, nil
}

// LoadAPIConfig 加载 configs/api.yaml；文件不存在时使用默认配置
func LoadAPIConfig() (*Config, error) {
	return LoadConfigOrDefault(DefaultAPIConfigPath)
}

// LoadConfigOrDefault 文件不存在时返回 Default()（已替换环境变量）
func LoadConfigOrDefault(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			replaceEnvVars(cfg)
			return cfg, nil
		}
		return nil, fmt.Errorf("无法读取配置文件: %w", err)
	}
	return LoadConfig(configPath)
}

// replaceEnvVars 替换配置中 ${VAR} 形式的环境变量；变量未设置时置空
func replaceEnvVars(cfg *Config) {
	cfg.Model.APIKey = expandEnv(cfg.Model.APIKey)
	cfg.Memory.Password = expandEnv(cfg.Memory.Password)
	cfg.Memory.DSN = expandEnv(cfg.Memory.DSN)
	cfg.Secrets.Vault.Token = expandEnv(cfg.Secrets.Vault.Token)
}

func expandEnv(val string) string {
	if !strings.HasPrefix(val, "$") {
		return val
	}
	envVar := strings.TrimPrefix(strings.TrimSuffix(val, "}"), "${")
	envVar = strings.TrimPrefix(envVar, "$")
	return os.Getenv(envVar)
}
