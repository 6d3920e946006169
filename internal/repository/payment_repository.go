package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/travel-reservations/internal/database"
	"github.com/iliyamo/travel-reservations/internal/model"
)

// PaymentRepo persists payments.  Payments are insert-only.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

const paymentColumns = `id, reference, amount_cents, status, method, client_id, created_at`

func scanPayment(s rowScanner) (*model.Payment, error) {
	var p model.Payment
	if err := s.Scan(&p.ID, &p.Reference, &p.AmountCents, &p.Status, &p.Method, &p.ClientID, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateTx inserts a payment in the caller's transaction and populates
// ID and created_at.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx database.DBTX, p *model.Payment) error {
	const q = `INSERT INTO payments (reference, amount_cents, status, method, client_id) VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, p.Reference, p.AmountCents, p.Status, p.Method, p.ClientID)
	if err != nil {
		return translate(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	created, err := scanPayment(tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	if err != nil {
		return translate(err)
	}
	*p = *created
	return nil
}

// GetByIDTx reads a payment inside the caller's transaction.
func (r *PaymentRepo) GetByIDTx(ctx context.Context, tx database.DBTX, id uint64) (*model.Payment, error) {
	p, err := scanPayment(tx.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id))
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}
