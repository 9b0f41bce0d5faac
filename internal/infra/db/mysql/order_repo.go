package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/printmailhq/printmail/internal/domain/orders"
)

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `
id, document_id, tracking_id, mail_type, price_cents,
recipient_name, recipient_company, address_line1, address_line2,
address_city, address_state, address_zip, address_country,
status, expected_delivery_date, created_at, updated_at`

// Save insert/update Order record
func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	const q = `
INSERT INTO orders
(id, document_id, tracking_id, mail_type, price_cents,
 recipient_name, recipient_company, address_line1, address_line2,
 address_city, address_state, address_zip, address_country,
 status, expected_delivery_date, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status), tracking_id=VALUES(tracking_id),
 expected_delivery_date=VALUES(expected_delivery_date), updated_at=VALUES(updated_at);
`
	created := o.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := o.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	_, err := r.db.ExecContext(ctx, q,
		o.ID, o.DocumentID, o.TrackingID, stringOrDash(string(o.MailType)), o.PriceCents,
		stringOrDash(o.Recipient.Name), o.Recipient.Company, o.Recipient.Line1, o.Recipient.Line2,
		o.Recipient.City, o.Recipient.State, o.Recipient.Zip, o.Recipient.Country,
		stringOrDash(string(o.Status)), o.ExpectedDeliveryDate, created, updated,
	)
	return err
}

func (r *OrderRepository) Get(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id=? LIMIT 1;`
	o, err := scanOrder(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return o, err
}

// Latest orders newest-first
func (r *OrderRepository) Latest(ctx context.Context, limit int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	q := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// UpdateStatus mutates the fulfillment status only
func (r *OrderRepository) UpdateStatus(ctx context.Context, id domain.OrderID, status domain.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status=?, updated_at=? WHERE id=?;`,
		string(status), time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM orders WHERE id=? LIMIT 1;`, id).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var mailType, status string
	if err := row.Scan(
		&o.ID, &o.DocumentID, &o.TrackingID, &mailType, &o.PriceCents,
		&o.Recipient.Name, &o.Recipient.Company, &o.Recipient.Line1, &o.Recipient.Line2,
		&o.Recipient.City, &o.Recipient.State, &o.Recipient.Zip, &o.Recipient.Country,
		&status, &o.ExpectedDeliveryDate, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.MailType = domain.MailType(mailType)
	o.Status = domain.Status(status)
	return &o, nil
}
