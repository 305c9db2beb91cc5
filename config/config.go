package config

import (
	"encoding/json"
	"errors"
	"os"
)

// Config holds everything the tool reads from its JSON config file.
type Config struct {
	LLM         *LLMConfig `json:"llm,omitempty"`
	ServerAddr  string     `json:"server_addr,omitempty"`
	HistoryPath string     `json:"history_path,omitempty"`
	LogoPath    string     `json:"logo_path,omitempty"`
}

// LLMConfig 生成模块的模型配置。
type LLMConfig struct {
	Provider    string `json:"provider,omitempty"`
	Model       string `json:"model,omitempty"`
	SearchModel string `json:"search_model,omitempty"`
	ImageModel  string `json:"image_model,omitempty"`
	APIKey      string `json:"api_key,omitempty"`
	BaseURL     string `json:"base_url,omitempty"`
}

// Load reads JSON config from disk.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if cfg.LLM == nil || cfg.LLM.Provider == "" {
		return Config{}, errors.New("config must include llm.provider")
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = "history.json"
	}
	return cfg, nil
}
