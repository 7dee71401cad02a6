package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/booking-hub/internal/store"
)

// Store is the MySQL implementation of store.Store.
type Store struct {
	conn
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// NewStore wraps an open connection pool. It panics on nil so that
// wiring mistakes surface at startup.
func NewStore(db *sqlx.DB) *Store {
	if db == nil {
		panic("repository: nil db")
	}
	return &Store{conn: conn{q: db}, db: db}
}

// DB exposes the pool for health checks and migrations.
func (s *Store) DB() *sqlx.DB { return s.db }

// InTx begins a READ COMMITTED transaction, runs fn and commits. Conflicts
// such as deadlocks are not retried; they surface as persistence failures.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return mapErr("begin tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(ctx, &txConn{conn: conn{q: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapErr("commit", err)
	}
	committed = true
	return nil
}

// conn carries the queries shared by the pool and a transaction.
type conn struct {
	q sqlx.ExtContext
}

// txConn adds locking reads and writes. It is only handed out by InTx.
type txConn struct {
	conn
}

var _ store.Tx = (*txConn)(nil)
