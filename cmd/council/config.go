package main

import "time"

type Config struct {
	BadgerFilepath   string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel         string        `env:"LOG_LEVEL,default=INFO"`
	AppMode          string        `env:"APP_MODE,default=offline"`
	OpenAIKey        string        `env:"OPENAI_API_KEY"`
	AnthropicKey     string        `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string        `env:"ANTHROPIC_BASE_URL"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT,default=30s"`
	OfflineSeed      int64         `env:"OFFLINE_SEED"`
}
