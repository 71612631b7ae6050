package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Open connects gorm for the configured backend.
// MySQL DSN demo:
// app:apppass@tcp(127.0.0.1:3306)/gopherchat?charset=utf8mb4&parseTime=true&loc=Local
func Open(backend, dsn string) (*gorm.DB, error) {
	switch backend {
	case "", "sqlite":
		if dsn == "" {
			dsn = "gopherchat.db"
		}
		return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	case "mysql":
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unsupported store backend %q", backend)
	}
}
