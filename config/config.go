package config

import (
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	MySQL struct {
		// 留空则不启用 run ledger
		DSN string `yaml:"dsn"`
	} `yaml:"mysql"`
	AI struct {
		LLMAPI   string `yaml:"llm_api"` // OpenAI 兼容网关地址
		LLMKey   string `yaml:"llm_key" env:"GEMINI_API_KEY"`
		LLMModel string `yaml:"llm_model"`
		ImageAPI string `yaml:"image_api"`
		ImageKey string `yaml:"image_key" env:"STABILITY_API_KEY"`
		VoiceAPI string `yaml:"voice_api"`
		SttAPI   string `yaml:"stt_api"`
	} `yaml:"ai"`
	Models struct {
		GGUFPath      string `yaml:"gguf_path"`      // 本地量化模型文件（可选回退层）
		LlamaEndpoint string `yaml:"llama_endpoint"` // llama.cpp server 地址
	} `yaml:"models"`
	Worker struct {
		Addr      string `yaml:"addr"`      // 本地扩散模型 worker
		Assembler string `yaml:"assembler"` // PDF 排版 worker（可选）
	} `yaml:"worker"`
	Library struct {
		Root      string `yaml:"root"`
		ImagesDir string `yaml:"images_dir"`
		AudioDir  string `yaml:"audio_dir"`
	} `yaml:"library"`
	MinIO struct {
		Enabled   bool   `yaml:"enabled"`
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		UseSSL    bool   `yaml:"use_ssl"`
	} `yaml:"minio"`
}

var AppConfig *Config

func InitConfig() {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		log.Fatalf("配置文件读取失败: %v", err)
	}
	defer f.Close()
	decoder := yaml.NewDecoder(f)
	AppConfig = &Config{}
	if err := decoder.Decode(AppConfig); err != nil {
		log.Fatalf("配置文件解析失败: %v", err)
	}
	// API 密钥允许用环境变量覆盖，避免写进 yaml
	if err := env.Parse(AppConfig); err != nil {
		log.Fatalf("环境变量解析失败: %v", err)
	}
	applyDefaults(AppConfig)
}

func applyDefaults(c *Config) {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.AI.LLMModel == "" {
		c.AI.LLMModel = "gemini-1.5-flash"
	}
	if c.Library.Root == "" {
		c.Library.Root = "data/library"
	}
	if c.Library.ImagesDir == "" {
		c.Library.ImagesDir = "data/images"
	}
	if c.Library.AudioDir == "" {
		c.Library.AudioDir = "data/audio"
	}
}
