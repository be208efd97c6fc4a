package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(config *viper.Viper, log *logrus.Logger) *gorm.DB {
	dialector, err := Dialector(config)
	if err != nil {
		panic(err)
	}

	gormConfig := &gorm.Config{}
	if !config.GetBool("database.debug") {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		panic(fmt.Errorf("failed to connect database: %w", err))
	}

	log.WithField("driver", dialector.Name()).Info("database connected")
	return db
}

// Dialector picks the gorm driver from database.driver. Postgres is the
// default; sqlite is meant for local runs and tests.
func Dialector(config *viper.Viper) (gorm.Dialector, error) {
	switch driver := config.GetString("database.driver"); driver {
	case "", "postgres":
		return postgres.Open(postgresDSN(config)), nil
	case "sqlite":
		path := config.GetString("database.path")
		if path == "" {
			path = "file::memory:?cache=shared"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func postgresDSN(config *viper.Viper) string {
	username := config.GetString("database.username")
	password := config.GetString("database.password")
	host := config.GetString("database.host")
	port := config.GetInt("database.port")
	dbname := config.GetString("database.dbname")
	sslmode := config.GetString("database.sslmode")
	if sslmode == "" {
		sslmode = "disable"
	}
	timezone := config.GetString("database.timezone")
	if timezone == "" {
		timezone = "UTC"
	}

	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		host,
		username,
		password,
		dbname,
		port,
		sslmode,
		timezone,
	)
}
