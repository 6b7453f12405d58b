// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"
	"strings"

	"github.com/deskhub/deskhub/internal/config"
)

// Create builds the Data Source Name for the configured gorm engine.
func Create(dbCfg *config.Config) string {
	switch dbCfg.DB.GormEngine {
	case config.EnginePostgres:
		return Postgres(dbCfg.DB)
	case config.EngineMySQL:
		return MySQL(dbCfg.DB)
	default:
		return dbCfg.DB.Path
	}
}

// MySQL builds a go-sql-driver/mysql DSN.
func MySQL(db config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
		db.Extras,
	)

	return out
}

// Postgres builds a pgx keyword/value DSN.
func Postgres(db config.DB) string {
	out := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d",
		db.Host,
		db.User,
		db.Password,
		db.Name,
		db.Port,
	)

	if extras := strings.TrimSpace(db.Extras); extras != "" {
		out += " " + extras
	}

	return out
}
