package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

func NewViper() *viper.Viper {
	config := viper.New()

	if os.Getenv("ENV") == "production" {
		config.SetConfigName("config.prod")
	} else {
		config.SetConfigName("config")
	}

	config.SetConfigType("yaml")
	config.AddConfigPath(".")

	SetDefaults(config)

	// Env overrides file values, e.g. DATABASE_DRIVER for database.driver.
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AutomaticEnv()

	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	return config
}

func SetDefaults(config *viper.Viper) {
	config.SetDefault("app.name", "drivequiz-be")
	config.SetDefault("api.listen", ":8080")
	config.SetDefault("api.prefork", false)

	config.SetDefault("log.level", "info")
	config.SetDefault("log.format", "text")

	config.SetDefault("database.driver", "postgres")
	config.SetDefault("database.seed", true)

	config.SetDefault("quiz.session_ttl", "2h")
	config.SetDefault("quiz.janitor_interval", "1m")
	config.SetDefault("quiz.max_sessions", 10000)

	config.SetDefault("achievements.timeout", "10s")
	config.SetDefault("jobs.concurrency", 5)

	config.SetDefault("llm.model", "gpt-4o-mini")
}
