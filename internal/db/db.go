package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/uniprbooks/backend/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// BuildDSN assembles the go-sql-driver DSN. DB_HOST accepts a bare hostname,
// an absolute socket path, or an address already wrapped in tcp()/unix();
// INSTANCE_CONNECTION_NAME overrides all of those with the Cloud SQL socket.
func BuildDSN(cfg *config.Config) string {
	addr := cfg.DBHost
	switch {
	case cfg.InstanceConnectionName != "":
		addr = "unix(/cloudsql/" + cfg.InstanceConnectionName + ")"
	case strings.HasPrefix(addr, "tcp(") || strings.HasPrefix(addr, "unix("):
		// pre-wrapped, use as is
	case strings.HasPrefix(addr, "/"):
		addr = "unix(" + addr + ")"
	default:
		addr = "tcp(" + addr + ":" + cfg.DBPort + ")"
	}
	return fmt.Sprintf("%s:%s@%s/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.DBUser, cfg.DBPassword, addr, cfg.DBName)
}

func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := BuildDSN(cfg)
	gcfg := &gorm.Config{
		PrepareStmt: true,
		// Registration relies on duplicate-key errors to detect an already
		// registered email.
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	}
	db, err := gorm.Open(mysql.Open(dsn), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)

	return db, nil
}
