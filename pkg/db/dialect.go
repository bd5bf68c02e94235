package db

import (
	"fmt"
	"strings"

	puresqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	TypePostgres   = "postgres"
	TypeMySQL      = "mysql"
	TypeSQLite     = "sqlite"
	TypePureSQLite = "sqlite-pure"
)

func Dialect(cfg Config) (gorm.Dialector, error) {
	timeout := int(cfg.ConnectTimeout.Seconds())
	if timeout <= 0 {
		timeout = 5
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Type)) {
	case TypeMySQL:
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&timeout=%ds",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.Name,
			timeout,
		)), nil
	case TypePostgres, "":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=%d",
			cfg.Host,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.Port,
			cfg.SSLMode,
			timeout,
		)), nil
	case TypeSQLite:
		return sqlite.Open(sqlitePath(cfg) + "?_foreign_keys=on"), nil
	case TypePureSQLite:
		return puresqlite.Open(sqlitePath(cfg) + "?_pragma=foreign_keys(1)"), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.Type)
	}
}

// IsSQLite reports whether the configured dialect is one of the sqlite flavours.
func IsSQLite(dialect string) bool {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case TypeSQLite, TypePureSQLite:
		return true
	default:
		return false
	}
}

func sqlitePath(cfg Config) string {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = "backoffice.db"
	}
	return path
}
