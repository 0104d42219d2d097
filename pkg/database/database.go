package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/social-feed/config"
)

// InitDB 按配置打开修复日志库，sqlite 用于本地、postgres 用于线上
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	gc := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	switch cfg.Journal.Driver {
	case "sqlite", "":
		return gorm.Open(sqlite.Open(cfg.Journal.DSN), gc)
	case "postgres":
		return gorm.Open(postgres.Open(cfg.Journal.DSN), gc)
	default:
		return nil, fmt.Errorf("unsupported journal driver: %s", cfg.Journal.Driver)
	}
}
