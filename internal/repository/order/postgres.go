package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"plugdrop/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by Postgres.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Lock each product row, verify stock, decrement. Any shortage rolls
	// the whole reservation back.
	for _, l := range o.Lines {
		var stock int
		err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1 FOR UPDATE`, l.ProductID).Scan(&stock)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if stock < l.Quantity {
			return domain.StockConflictError{ProductID: l.ProductID, Requested: l.Quantity, Available: stock}
		}
		if _, err := tx.Exec(ctx, `UPDATE products SET stock = stock - $2 WHERE id = $1`, l.ProductID, l.Quantity); err != nil {
			return err
		}
	}

	var meetupLat, meetupLng *float64
	if o.Meetup != nil {
		meetupLat, meetupLng = &o.Meetup.Lat, &o.Meetup.Lng
	}
	const insertOrder = `
INSERT INTO orders (id, customer_id, status, payment, subtotal_cents, discount_rate, final_price_cents, meetup_lat, meetup_lng, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11)
`
	if _, err := tx.Exec(ctx, insertOrder,
		o.ID, o.CustomerID, o.Status, o.Payment,
		o.SubtotalCents, o.DiscountRate, o.FinalPriceCents,
		meetupLat, meetupLng, o.Note, o.CreatedAt,
	); err != nil {
		return err
	}

	for _, l := range o.Lines {
		if _, err := tx.Exec(ctx, `
INSERT INTO order_lines (order_id, product_id, name, unit_price_cents, quantity)
VALUES ($1, $2, $3, $4, $5)
`, o.ID, l.ProductID, l.Name, l.UnitPriceCents, l.Quantity); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("order repo: created id=%s customer=%s lines=%d total=%d", o.ID, o.CustomerID, len(o.Lines), o.FinalPriceCents)
	return nil
}

const orderColumns = `id::text, customer_id::text, COALESCE(courier_id::text, ''), status, payment, subtotal_cents, discount_rate, final_price_cents, meetup_lat, meetup_lng, COALESCE(note, ''), created_at`

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := r.scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}
	if err := r.loadChat(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE 1=1`
	args := []interface{}{}
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		q += ` AND customer_id = $1`
	}
	if f.CourierID != "" {
		args = append(args, f.CourierID)
		q += fmt.Sprintf(` AND courier_id = $%d`, len(args))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		q += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := r.scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadLines(ctx, &result[i]); err != nil {
			return nil, err
		}
		if err := r.loadChat(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, from, to domain.OrderStatus, courierID string) error {
	const q = `
UPDATE orders
SET status = $3,
    courier_id = COALESCE(NULLIF($4, '')::uuid, courier_id)
WHERE id = $1 AND status = $2
`
	cmd, err := r.pool.Exec(ctx, q, id, from, to, courierID)
	if err != nil {
		r.logger.Printf("order repo: update status id=%s %s->%s error=%v", id, from, to, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return r.statusConflict(ctx, id, from)
	}
	r.logger.Printf("order repo: status id=%s %s->%s", id, from, to)
	return nil
}

func (r *postgresRepo) Cancel(ctx context.Context, id string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if domain.OrderStatus(status) != domain.StatusOpen {
		return domain.ValidationError{Reason: "only open orders can be cancelled"}
	}

	// Give every reserved quantity back. Lines for products an admin has
	// deleted since checkout are skipped by the join.
	if _, err := tx.Exec(ctx, `
UPDATE products p
SET stock = p.stock + l.quantity
FROM order_lines l
WHERE l.order_id = $1 AND l.product_id = p.id
`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, domain.StatusCancelled); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	r.logger.Printf("order repo: cancelled id=%s", id)
	return nil
}

func (r *postgresRepo) AppendMessage(ctx context.Context, id string, msg domain.ChatMessage) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if domain.OrderStatus(status).Terminal() {
		return domain.ValidationError{Reason: "chat is closed for this order"}
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO order_messages (order_id, sender_id, sender_role, text, sent_at)
VALUES ($1, $2, $3, $4, $5)
`, id, msg.SenderID, msg.SenderRole, msg.Text, msg.SentAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Printf("order repo: delete id=%s error=%v", id, err)
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: deleted id=%s", id)
	return nil
}

func (r *postgresRepo) scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var lat, lng *float64
	err := row.Scan(&o.ID, &o.CustomerID, &o.CourierID, &o.Status, &o.Payment,
		&o.SubtotalCents, &o.DiscountRate, &o.FinalPriceCents, &lat, &lng, &o.Note, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if lat != nil && lng != nil {
		o.Meetup = &domain.MeetupPoint{Lat: *lat, Lng: *lng}
	}
	return &o, nil
}

func (r *postgresRepo) loadLines(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `
SELECT product_id::text, name, unit_price_cents, quantity
FROM order_lines
WHERE order_id = $1
ORDER BY id ASC
`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ProductID, &l.Name, &l.UnitPriceCents, &l.Quantity); err != nil {
			return err
		}
		o.Lines = append(o.Lines, l)
	}
	return rows.Err()
}

func (r *postgresRepo) loadChat(ctx context.Context, o *domain.Order) error {
	rows, err := r.pool.Query(ctx, `
SELECT sender_id::text, sender_role, text, sent_at
FROM order_messages
WHERE order_id = $1
ORDER BY id ASC
`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.SenderID, &m.SenderRole, &m.Text, &m.SentAt); err != nil {
			return err
		}
		o.Chat = append(o.Chat, m)
	}
	return rows.Err()
}

// statusConflict distinguishes "order gone" from "someone got there first".
func (r *postgresRepo) statusConflict(ctx context.Context, id string, want domain.OrderStatus) error {
	var current string
	err := r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	return domain.ValidationError{Reason: "order is no longer " + string(want)}
}
