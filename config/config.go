package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Port       string `mapstructure:"PORT"`
	CorsOrigin string `mapstructure:"CORS_ORIGIN"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	DB_URL   string `mapstructure:"DB_URL"`
	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DB"`

	SolanaRPCURL     string `mapstructure:"SOLANA_RPC_URL"`
	SolanaProgramID  string `mapstructure:"SOLANA_PROGRAM_ID"`
	ServiceWalletKey string `mapstructure:"SERVICE_WALLET_KEY"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	AdminChatID      int64  `mapstructure:"ADMIN_CHAT_ID"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("failed to resolve config path: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "3001")
	viper.SetDefault("LOG_LEVEL", "debug")
	viper.SetDefault("MONGO_DB", "solana_app")
	viper.SetDefault("SOLANA_RPC_URL", "https://api.devnet.solana.com")

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}
