package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/slot-booking/backend/internal/config"
)

// querier 是 *sql.DB 和 *sql.Tx 共同的部分，使得同一套查询既可以直接执行也可以在事务中执行
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
	db     querier
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
		db:     dbpool,
	}
}

func (r *Repository) withTx(tx *sql.Tx) *Repository {
	return &Repository{
		cfg:    r.cfg,
		dbpool: r.dbpool,
		db:     tx,
	}
}

func (r *Repository) queryTimeout() time.Duration {
	return time.Duration(r.cfg.Database.QueryTimeout) * time.Second
}

func (r *Repository) transactionTimeout() time.Duration {
	return time.Duration(r.cfg.Database.TransactionTimeout) * time.Second
}
