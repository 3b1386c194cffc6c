package db

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/USA-RedDragon/ota-server/internal/config"
	"github.com/USA-RedDragon/ota-server/internal/db/models"
	"github.com/glebarez/sqlite"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MakeDB(config *config.Config) (db *gorm.DB, err error) {
	dialector, err := dialectorFor(config.Persistence.Database)
	if err != nil {
		return nil, err
	}
	db, err = gorm.Open(dialector, &gorm.Config{Logger: NewLogger(slogWriter())})
	if err != nil {
		return db, fmt.Errorf("failed to open database: %w", err)
	}
	if config.HTTP.Tracing.Enabled {
		if err = db.Use(otelgorm.NewPlugin()); err != nil {
			return db, fmt.Errorf("failed to trace database: %w", err)
		}
	}

	if err = Migrate(db); err != nil {
		return db, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return db, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxIdleConns(runtime.GOMAXPROCS(0))
	const connsPerCPU = 10
	sqlDB.SetMaxOpenConns(runtime.GOMAXPROCS(0) * connsPerCPU)
	const maxIdleTime = 10 * time.Minute
	sqlDB.SetConnMaxIdleTime(maxIdleTime)

	return
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.App{},
		&models.Bundle{},
		&models.Channel{},
		&models.Device{},
		&models.ChannelOverride{})
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func dialectorFor(database config.Database) (gorm.Dialector, error) {
	switch database.Driver {
	case config.DatabaseDriverSQLite:
		dsn := database.Database + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		if database.ExtraParameters != "" {
			dsn += "&" + strings.TrimPrefix(database.ExtraParameters, "&")
		}
		return sqlite.Open(dsn), nil
	case config.DatabaseDriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s",
			database.Host, database.Username, database.Password, database.Database)
		if database.Port != 0 {
			dsn += fmt.Sprintf(" port=%d", database.Port)
		}
		if database.ExtraParameters != "" {
			dsn += " " + database.ExtraParameters
		}
		return postgres.Open(dsn), nil
	case config.DatabaseDriverMySQL:
		port := database.Port
		if port == 0 {
			port = 3306
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
			database.Username, database.Password, database.Host, port, database.Database)
		if database.ExtraParameters != "" {
			dsn += "&" + strings.TrimPrefix(database.ExtraParameters, "&")
		}
		return mysql.Open(dsn), nil
	default:
		return nil, config.ErrDatabaseDriverInvalid
	}
}
