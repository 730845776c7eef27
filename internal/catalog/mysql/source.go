package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Rrens/card-workbench/internal/catalog"
	"github.com/Rrens/card-workbench/internal/catalog/sqlstore"
	_ "github.com/go-sql-driver/mysql"
)

// Source implements catalog.Source for MySQL
type Source struct {
	sqlstore.Store
}

// NewSource creates a new MySQL source
func NewSource() catalog.Source {
	return &Source{Store: sqlstore.Store{Dialect: sqlstore.MySQL}}
}

// Driver returns the backend identifier
func (s *Source) Driver() string {
	return "mysql"
}

// DSN builds the driver connection string
func DSN(config catalog.ConnectionConfig) string {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
	)

	if config.SSLMode == "require" || config.SSLMode == "verify-full" {
		dsn += "&tls=true"
	}
	return dsn
}

// Connect establishes connection to MySQL
func (s *Source) Connect(ctx context.Context, config catalog.ConnectionConfig) error {
	db, err := sql.Open("mysql", DSN(config))
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping: %w", err)
	}

	s.DB = db
	return nil
}
