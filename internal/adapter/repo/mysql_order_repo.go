package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

// Terminal statuses are fixed in the schema-side guard below; keep in
// sync with domain.Status.Terminal.
const notTerminal = `status NOT IN ('valid','failed','cancelled','expired')`

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

func (r *MySQLOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	customerJSON, err := json.Marshal(o.Customer)
	if err != nil {
		return fmt.Errorf("encode customer: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO orders (transaction_id,status,amount_cents,currency,items_json,customer_json,status_note,created_at,updated_at)
VALUES (?,?,?,?,?,?,'',NOW(),NOW())
`, o.TransactionID, string(o.Status), o.Amount.Cents, o.Amount.Currency, itemsJSON, customerJSON)
	return err
}

func (r *MySQLOrderRepo) GetByTransactionID(ctx context.Context, tranID string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT transaction_id,status,amount_cents,currency,items_json,customer_json
FROM orders WHERE transaction_id=?`, tranID)

	var (
		o            domain.Order
		status       string
		itemsJSON    []byte
		customerJSON []byte
	)
	if err := row.Scan(&o.TransactionID, &status, &o.Amount.Cents, &o.Amount.Currency, &itemsJSON, &customerJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Status = domain.Status(status)
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items for %s: %w", tranID, err)
	}
	if err := json.Unmarshal(customerJSON, &o.Customer); err != nil {
		return nil, fmt.Errorf("decode customer for %s: %w", tranID, err)
	}
	return &o, nil
}

// UpdateStatusIfNotTerminal is the single-writer guard: two concurrently
// redelivered notifications race on this conditional write and exactly
// one wins.
func (r *MySQLOrderRepo) UpdateStatusIfNotTerminal(ctx context.Context, tranID string, to domain.Status, note string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
UPDATE orders
SET status = ?, status_note = ?, updated_at = NOW()
WHERE transaction_id = ? AND `+notTerminal,
		string(to), note, tranID,
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	// rows == 0 -> not found or already terminal
	return rows > 0, nil
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
