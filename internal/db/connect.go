// Package db provides database connection and migration helpers.
package db

import (
	"fmt"

	sqldriver "github.com/go-sql-driver/mysql"
	"github.com/zulandar/groundwork/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN from database settings.
func DSN(cfg config.DatabaseConfig) string {
	mc := sqldriver.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mc.DBName = cfg.Database
	mc.ParseTime = true
	return mc.FormatDSN()
}

// Connect opens a GORM connection per the configured driver: MySQL for
// shared deployments, SQLite for single-machine local mode.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gc := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	switch cfg.Driver {
	case "mysql":
		gdb, err := gorm.Open(mysql.Open(DSN(cfg)), gc)
		if err != nil {
			return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", cfg.Host, cfg.Port, cfg.Database, err)
		}
		return gdb, nil
	case "sqlite":
		gdb, err := gorm.Open(sqlite.Open(cfg.Path), gc)
		if err != nil {
			return nil, fmt.Errorf("db: open %s: %w", cfg.Path, err)
		}
		return gdb, nil
	default:
		return nil, fmt.Errorf("db: unknown driver %q", cfg.Driver)
	}
}
