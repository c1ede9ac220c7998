package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-airtable/core"
)

// RepositoryFactory wires the cursor store fleet over one bun handle. The
// handle can come from a raw *bun.DB, anything exposing DB() *bun.DB, or the
// Open helpers below.
type RepositoryFactory struct {
	db *bun.DB

	cursorStore *WebhookCursorStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.cursorStore != nil {
		return nil
	}
	cursorStore, err := NewWebhookCursorStore(f.db)
	if err != nil {
		return err
	}
	f.cursorStore = cursorStore
	return nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) WebhookCursorStore() core.WebhookCursorStore {
	if f == nil {
		return nil
	}
	return f.cursorStore
}

// EnsureSchema creates the cursor table when it does not exist yet.
// Production deployments usually manage schema via migrations; this covers
// tests and single-binary setups.
func (f *RepositoryFactory) EnsureSchema(ctx context.Context) error {
	if f == nil || f.db == nil {
		return fmt.Errorf("sqlstore: repository factory is not configured")
	}
	_, err := f.db.NewCreateTable().
		Model((*webhookCursorRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

// OpenSQLite opens a sqlite-backed factory. DSN examples:
// "file:cursors.db?_foreign_keys=on", "file::memory:?cache=shared".
func OpenSQLite(dsn string) (*RepositoryFactory, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: sqlite dsn is required")
	}
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return NewRepositoryFactoryFromDB(bun.NewDB(sqlDB, sqlitedialect.New()))
}

// OpenPostgres opens a postgres-backed factory using lib/pq connection
// strings.
func OpenPostgres(dsn string) (*RepositoryFactory, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("sqlstore: postgres dsn is required")
	}
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres db: %w", err)
	}
	return NewRepositoryFactoryFromDB(bun.NewDB(sqlDB, pgdialect.New()))
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
