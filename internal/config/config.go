package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Address string `yaml:"address"` // 例如 ":8080"
	APIKey  string `yaml:"api_key"` // 非空时启用 X-API-Key 鉴权
}

// LoggerConfig 日志配置
type LoggerConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json, pretty
	TimeFormat   string `yaml:"time_format"`   // 时间格式
	ReportCaller bool   `yaml:"report_caller"` // 是否报告调用位置
}

// LLMConfig 结构化生成服务（OpenAI兼容接口）配置
type LLMConfig struct {
	APIKey      string  `yaml:"api_key"`
	APIURL      string  `yaml:"api_url"` // chat completions 接口地址
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

// SearchConfig 薪资调研使用的网页搜索服务配置
type SearchConfig struct {
	APIKey         string   `yaml:"api_key"`
	APIURL         string   `yaml:"api_url"`         // 搜索接口地址
	MaxResults     int      `yaml:"max_results"`     // 单次搜索返回的结果数上限
	IncludeDomains []string `yaml:"include_domains"` // 优先检索的薪资数据站点
}

// InsightsConfig 洞察服务配置
type InsightsConfig struct {
	MaxResearchSteps int `yaml:"max_research_steps"` // 调研代理的最大工具调用轮数
}

// StorageConfig 简历记录存储配置
type StorageConfig struct {
	DataDir string `yaml:"data_dir"` // 每条简历一个 JSON 文件的目录
}

// MinIOConfig MinIO配置结构
type MinIOConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	OriginalsBucket string `yaml:"originalsBucket"` // 原始简历归档桶
	Location        string `yaml:"location"`        // 可选，存储桶区域
}

// TracingConfig 链路追踪配置
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`     // OTLP gRPC 接收端地址
	ServiceName string `yaml:"service_name"` // 上报的服务名
}

// Config 应用程序配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logger   LoggerConfig   `yaml:"logger"`
	LLM      LLMConfig      `yaml:"llm"`
	Search   SearchConfig   `yaml:"search"`
	Insights InsightsConfig `yaml:"insights"`
	Storage  StorageConfig  `yaml:"storage"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Tracing  TracingConfig  `yaml:"tracing"`

	// PromptsPath 提示词配置文件路径，由 LoadPrompts 单独加载
	PromptsPath string `yaml:"prompts_path"`
}

// LoadConfig 从文件加载配置，并用环境变量覆盖敏感项
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("必须提供配置文件路径")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig 返回带默认值的配置
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Address: ":8080"},
		Logger: LoggerConfig{Level: "info", Format: "json"},
		LLM: LLMConfig{
			Temperature: 0.3,
			MaxTokens:   4096,
		},
		Search: SearchConfig{
			APIURL:     "https://api.tavily.com/search",
			MaxResults: 8,
			IncludeDomains: []string{
				"glassdoor.com",
				"levels.fyi",
				"payscale.com",
				"linkedin.com",
				"salary.com",
				"indeed.com",
				"bls.gov",
			},
		},
		Insights:    InsightsConfig{MaxResearchSteps: 4},
		Storage:     StorageConfig{DataDir: "data/resumes/parsed"},
		PromptsPath: "prompts.yaml",
	}
}

// applyEnvOverrides 环境变量优先于配置文件中的敏感项
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("SEARCH_API_KEY"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := os.Getenv("SERVER_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("MINIO_ACCESS_KEY_ID"); v != "" {
		cfg.MinIO.AccessKeyID = v
	}
	if v := os.Getenv("MINIO_SECRET_ACCESS_KEY"); v != "" {
		cfg.MinIO.SecretAccessKey = v
	}
}
