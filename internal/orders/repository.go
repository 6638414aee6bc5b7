package orders

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/platform/db"
)

var (
	ErrNotFound     = errors.New("order not found")
	ErrItemNotFound = errors.New("order item not found")
)

// Repository defines order data access. Item mutations verify the
// order is still DRAFT under a row lock and recompute the order total
// inside the same transaction.
type Repository interface {
	Create(ctx context.Context, o Order) (int64, error)
	Get(ctx context.Context, kind OrderKind, id int64) (Order, error)
	List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error)
	UpdateHeader(ctx context.Context, o Order) error
	SetStatus(ctx context.Context, kind OrderKind, id int64, status OrderStatus, notes *string) error
	ReplaceItems(ctx context.Context, kind OrderKind, id int64, items []OrderItem) error
	InsertItem(ctx context.Context, kind OrderKind, item OrderItem) (int64, error)
	UpdateItem(ctx context.Context, kind OrderKind, item OrderItem) error
	DeleteItem(ctx context.Context, kind OrderKind, orderID, itemID int64) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const orderColumns = "id, kind, number, contact_id, status, order_date, expected_date, notes, total_amount, created_at, updated_at"

func (r *pgRepository) Create(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := nextNumber(ctx, tx, o.Kind)
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO orders (kind, number, contact_id, status, order_date, expected_date, notes, total_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`, string(o.Kind), number, o.ContactID, string(o.Status), o.OrderDate, o.ExpectedDate, o.Notes, o.Total.String()).Scan(&id)
		if err != nil {
			return err
		}
		for _, item := range o.Items {
			if _, err := insertItemTx(ctx, tx, o.Kind, id, item); err != nil {
				return err
			}
		}
		return recomputeTotal(ctx, tx, o.Kind, id)
	})
	return id, err
}

func (r *pgRepository) Get(ctx context.Context, kind OrderKind, id int64) (Order, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1 AND kind = $2", id, string(kind))
	o, err := scanOrder(row)
	if err != nil {
		return Order{}, err
	}
	items, err := r.listItems(ctx, kind, id)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *pgRepository) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	where := "WHERE kind = $1"
	args := []any{string(req.Kind)}
	argPos := 2

	if req.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, string(req.Status))
		argPos++
	}
	if req.ContactID > 0 {
		where += fmt.Sprintf(" AND contact_id = $%d", argPos)
		args = append(args, req.ContactID)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY order_date DESC, id DESC LIMIT $%d OFFSET $%d",
		orderColumns, where, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) UpdateHeader(ctx context.Context, o Order) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET contact_id = $3, order_date = $4, expected_date = $5, notes = $6, updated_at = NOW()
		WHERE id = $1 AND kind = $2
	`, o.ID, string(o.Kind), o.ContactID, o.OrderDate, o.ExpectedDate, o.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) SetStatus(ctx context.Context, kind OrderKind, id int64, status OrderStatus, notes *string) error {
	query := "UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND kind = $2"
	args := []any{id, string(kind), string(status)}
	if notes != nil {
		query = "UPDATE orders SET status = $3, notes = $4, updated_at = NOW() WHERE id = $1 AND kind = $2"
		args = append(args, *notes)
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) ReplaceItems(ctx context.Context, kind OrderKind, id int64, items []OrderItem) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, kind, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			"DELETE FROM order_items WHERE order_id = $1 AND order_type = $2", id, string(kind)); err != nil {
			return err
		}
		for _, item := range items {
			if _, err := insertItemTx(ctx, tx, kind, id, item); err != nil {
				return err
			}
		}
		return recomputeTotal(ctx, tx, kind, id)
	})
}

func (r *pgRepository) InsertItem(ctx context.Context, kind OrderKind, item OrderItem) (int64, error) {
	var itemID int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, kind, item.OrderID); err != nil {
			return err
		}
		var err error
		itemID, err = insertItemTx(ctx, tx, kind, item.OrderID, item)
		if err != nil {
			return err
		}
		return recomputeTotal(ctx, tx, kind, item.OrderID)
	})
	return itemID, err
}

func (r *pgRepository) UpdateItem(ctx context.Context, kind OrderKind, item OrderItem) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, kind, item.OrderID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE order_items
			SET product_id = $4, description = $5, quantity = $6, unit_price = $7,
			    tax_amount = $8, discount_amount = $9, total_amount = $10
			WHERE id = $1 AND order_id = $2 AND order_type = $3
		`, item.ID, item.OrderID, string(kind), item.ProductID, item.Description,
			item.Quantity.String(), item.UnitPrice.String(),
			item.TaxAmount.String(), item.DiscountAmount.String(), item.Total.String())
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrItemNotFound
		}
		return recomputeTotal(ctx, tx, kind, item.OrderID)
	})
}

func (r *pgRepository) DeleteItem(ctx context.Context, kind OrderKind, orderID, itemID int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockEditable(ctx, tx, kind, orderID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			"DELETE FROM order_items WHERE id = $1 AND order_id = $2 AND order_type = $3",
			itemID, orderID, string(kind))
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrItemNotFound
		}
		return recomputeTotal(ctx, tx, kind, orderID)
	})
}

func (r *pgRepository) listItems(ctx context.Context, kind OrderKind, orderID int64) ([]OrderItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, description, quantity, unit_price, tax_amount, discount_amount, total_amount
		FROM order_items
		WHERE order_id = $1 AND order_type = $2
		ORDER BY id
	`, orderID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var item OrderItem
		var qty, price, tax, discount, total pgtype.Numeric
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Description,
			&qty, &price, &tax, &discount, &total); err != nil {
			return nil, err
		}
		item.Quantity = numericToDecimal(qty)
		item.UnitPrice = numericToDecimal(price)
		item.TaxAmount = numericToDecimal(tax)
		item.DiscountAmount = numericToDecimal(discount)
		item.Total = numericToDecimal(total)
		out = append(out, item)
	}
	return out, rows.Err()
}

func insertItemTx(ctx context.Context, tx pgx.Tx, kind OrderKind, orderID int64, item OrderItem) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO order_items (order_id, order_type, product_id, description, quantity, unit_price, tax_amount, discount_amount, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, orderID, string(kind), item.ProductID, item.Description,
		item.Quantity.String(), item.UnitPrice.String(),
		item.TaxAmount.String(), item.DiscountAmount.String(), item.Total.String()).Scan(&id)
	return id, err
}

// recomputeTotal keeps orders.total_amount equal to the sum of its
// line totals. Runs inside the caller's transaction.
func recomputeTotal(ctx context.Context, tx pgx.Tx, kind OrderKind, orderID int64) error {
	_, err := tx.Exec(ctx, `
		UPDATE orders
		SET total_amount = COALESCE((
			SELECT SUM(total_amount) FROM order_items
			WHERE order_id = $1 AND order_type = $2
		), 0), updated_at = NOW()
		WHERE id = $1 AND kind = $2
	`, orderID, string(kind))
	return err
}

// lockEditable locks the order row and verifies it is still editable,
// so a concurrent confirm cannot interleave with an item write.
func lockEditable(ctx context.Context, tx pgx.Tx, kind OrderKind, orderID int64) error {
	var status string
	err := tx.QueryRow(ctx,
		"SELECT status FROM orders WHERE id = $1 AND kind = $2 FOR UPDATE",
		orderID, string(kind)).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if !Editable(OrderStatus(status)) {
		return fmt.Errorf("%w: status %s", ErrOrderLocked, status)
	}
	return nil
}

func nextNumber(ctx context.Context, tx pgx.Tx, kind OrderKind) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", kind.NumberPrefix(), time.Now().Format("0601"))
	var last pgtype.Text
	if err := tx.QueryRow(ctx,
		"SELECT MAX(number) FROM orders WHERE kind = $1 AND number LIKE $2",
		string(kind), prefix+"%").Scan(&last); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, sequenceAfter(last.String)), nil
}

// sequenceAfter returns the sequence following the highest number
// issued in a series. Deriving it from MAX instead of a row count
// keeps deleted rows from freeing a number for reuse; the UNIQUE
// constraint on the number column backstops concurrent issuers.
func sequenceAfter(last string) int {
	i := strings.LastIndexByte(last, '-')
	if i < 0 {
		return 1
	}
	n, err := strconv.Atoi(last[i+1:])
	if err != nil {
		return 1
	}
	return n + 1
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var kind, status string
	var orderDate, createdAt, updatedAt pgtype.Timestamptz
	var expected pgtype.Timestamptz
	var total pgtype.Numeric
	err := row.Scan(&o.ID, &kind, &o.Number, &o.ContactID, &status,
		&orderDate, &expected, &o.Notes, &total, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	o.Kind = OrderKind(kind)
	o.Status = OrderStatus(status)
	o.OrderDate = orderDate.Time
	if expected.Valid {
		t := expected.Time
		o.ExpectedDate = &t
	}
	o.Total = numericToDecimal(total)
	o.CreatedAt = createdAt.Time
	o.UpdatedAt = updatedAt.Time
	return o, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
