package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQL drivers understood by NewDBConnection.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewDBConnection opens a gorm connection for driver. For sqlite the dsn is
// a file path (or ":memory:"); for postgres it is a connection URL.
func NewDBConnection(driver, dsn, appEnv string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("STORE_DSN is not set")
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	logMode := logger.Silent
	if appEnv == "development" {
		logMode = logger.Info
	}

	connection, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logMode),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := connection.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer at a time; sqlite serialises writes anyway
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	return connection, nil
}
