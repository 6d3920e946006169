package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by repositories, so
// the same query code runs inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MySQL server error numbers that mean "lock contention, try again".
const (
	errLockWaitTimeout = 1205
	errDeadlock        = 1213
)

// Transactor runs closures inside a database transaction.
type Transactor struct {
	DB          *sql.DB
	MaxAttempts int
	Backoff     time.Duration
	Log         *zap.Logger
}

// NewTransactor returns a Transactor that retries a closure up to
// maxAttempts times on deadlock or lock wait timeout.
func NewTransactor(db *sql.DB, maxAttempts int, log *zap.Logger) *Transactor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Transactor{DB: db, MaxAttempts: maxAttempts, Backoff: 20 * time.Millisecond, Log: log}
}

// InTx begins a transaction, runs fn and commits.  Any error from fn
// rolls the transaction back.  When MySQL aborts the transaction
// because of lock contention the whole closure is run again, so fn must
// not keep side effects outside the transaction.
func (t *Transactor) InTx(ctx context.Context, fn func(tx DBTX) error) error {
	var err error
	for attempt := 1; attempt <= t.MaxAttempts; attempt++ {
		err = t.once(ctx, fn)
		if err == nil || !IsRetryable(err) || attempt == t.MaxAttempts {
			return err
		}
		t.Log.Warn("transaction aborted by lock contention, retrying",
			zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * t.Backoff):
		}
	}
	return err
}

func (t *Transactor) once(ctx context.Context, fn func(tx DBTX) error) error {
	tx, err := t.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// IsRetryable reports whether err is a MySQL deadlock or lock wait
// timeout.
func IsRetryable(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == errDeadlock || me.Number == errLockWaitTimeout
}
