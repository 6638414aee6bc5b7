package invoices

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
	ErrNotFound        = errors.New("invoice not found")
	ErrPaymentNotFound = errors.New("payment not found")
)

// invoiceLineType is the order_items discriminator for invoice lines.
const invoiceLineType = "INVOICE"

// Repository defines invoice and payment data access. Payment
// mutations apply the amount to the invoice and re-derive its status
// inside one transaction.
type Repository interface {
	CreateInvoice(ctx context.Context, inv Invoice) (int64, error)
	GetInvoice(ctx context.Context, id int64) (Invoice, error)
	ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
	SetInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error
	CreatePayment(ctx context.Context, p Payment) (int64, error)
	UpdatePayment(ctx context.Context, p Payment) error
	DeletePayment(ctx context.Context, id int64) error
	GetPayment(ctx context.Context, id int64) (Payment, error)
	ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error)
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const invoiceColumns = "id, type, number, contact_id, order_id, invoice_date, due_date, status, total_amount, tax_amount, discount_amount, paid_amount, balance_amount, currency, notes, created_at, updated_at"

func (r *pgRepository) CreateInvoice(ctx context.Context, inv Invoice) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		number, err := nextNumber(ctx, tx, inv.Type)
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO invoices (type, number, contact_id, order_id, invoice_date, due_date, status,
				total_amount, tax_amount, discount_amount, paid_amount, balance_amount, currency, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			RETURNING id
		`, string(inv.Type), number, inv.ContactID, inv.OrderID, inv.InvoiceDate, inv.DueDate,
			string(inv.Status), inv.Total.String(), inv.TaxAmount.String(), inv.DiscountAmount.String(),
			inv.Paid.String(), inv.Balance.String(), inv.Currency, inv.Notes).Scan(&id)
		if err != nil {
			return err
		}
		for _, line := range inv.Lines {
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, order_type, product_id, description, quantity, unit_price, tax_amount, discount_amount, total_amount)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, id, invoiceLineType, line.ProductID, line.Description,
				line.Quantity.String(), line.UnitPrice.String(),
				line.TaxAmount.String(), line.DiscountAmount.String(), line.Total.String()); err != nil {
				return err
			}
		}
		return nil
	})
	return id, err
}

func (r *pgRepository) GetInvoice(ctx context.Context, id int64) (Invoice, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id)
	inv, err := scanInvoice(row)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Lines, err = r.listLines(ctx, id); err != nil {
		return Invoice{}, err
	}
	if inv.Payments, err = r.ListPayments(ctx, id); err != nil {
		return Invoice{}, err
	}
	return inv, nil
}

func (r *pgRepository) ListInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	where := "WHERE type = $1"
	args := []any{string(req.Type)}
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
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM invoices "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM invoices %s ORDER BY invoice_date DESC, id DESC LIMIT $%d OFFSET $%d",
		invoiceColumns, where, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, inv)
	}
	return out, total, rows.Err()
}

func (r *pgRepository) SetInvoiceStatus(ctx context.Context, id int64, status InvoiceStatus) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE invoices SET status = $2, updated_at = NOW() WHERE id = $1", id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) CreatePayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		total, paid, err := lockInvoice(ctx, tx, p.InvoiceID)
		if err != nil {
			return err
		}
		number, err := nextPaymentNumber(ctx, tx)
		if err != nil {
			return err
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO payments (number, invoice_id, payment_date, amount, method, reference,
				bank_account, cheque_date, clearance_date, currency, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id
		`, number, p.InvoiceID, p.PaymentDate, p.Amount.String(), string(p.Method), p.Reference,
			p.BankAccount, p.ChequeDate, p.ClearanceDate, p.Currency, p.Notes).Scan(&id)
		if err != nil {
			return err
		}
		return applyPaid(ctx, tx, p.InvoiceID, total, paid.Add(p.Amount))
	})
	return id, err
}

func (r *pgRepository) UpdatePayment(ctx context.Context, p Payment) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var oldAmount pgtype.Numeric
		var invoiceID int64
		err := tx.QueryRow(ctx,
			"SELECT invoice_id, amount FROM payments WHERE id = $1 FOR UPDATE", p.ID).Scan(&invoiceID, &oldAmount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPaymentNotFound
			}
			return err
		}
		total, paid, err := lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE payments
			SET payment_date = $2, amount = $3, method = $4, reference = $5, bank_account = $6,
			    cheque_date = $7, clearance_date = $8, notes = $9, updated_at = NOW()
			WHERE id = $1
		`, p.ID, p.PaymentDate, p.Amount.String(), string(p.Method), p.Reference,
			p.BankAccount, p.ChequeDate, p.ClearanceDate, p.Notes)
		if err != nil {
			return err
		}
		delta := p.Amount.Sub(numericToDecimal(oldAmount))
		return applyPaid(ctx, tx, invoiceID, total, paid.Add(delta))
	})
}

func (r *pgRepository) DeletePayment(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var amount pgtype.Numeric
		var invoiceID int64
		err := tx.QueryRow(ctx,
			"SELECT invoice_id, amount FROM payments WHERE id = $1 FOR UPDATE", id).Scan(&invoiceID, &amount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrPaymentNotFound
			}
			return err
		}
		total, paid, err := lockInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM payments WHERE id = $1", id); err != nil {
			return err
		}
		newPaid := paid.Sub(numericToDecimal(amount))
		if newPaid.IsNegative() {
			newPaid = decimal.Zero
		}
		return applyPaid(ctx, tx, invoiceID, total, newPaid)
	})
}

const paymentColumns = "id, number, invoice_id, payment_date, amount, method, reference, bank_account, cheque_date, clearance_date, currency, notes, created_at, updated_at"

func (r *pgRepository) GetPayment(ctx context.Context, id int64) (Payment, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = $1", id)
	return scanPayment(row)
}

func (r *pgRepository) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE invoice_id = $1 ORDER BY payment_date, id", invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgRepository) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE status IN ($2, $3) AND due_date IS NOT NULL AND due_date < $4
	`, string(StatusOverdue), string(StatusUnpaid), string(StatusPartial), asOf)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *pgRepository) listLines(ctx context.Context, invoiceID int64) ([]InvoiceLine, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, description, quantity, unit_price, tax_amount, discount_amount, total_amount
		FROM order_items
		WHERE order_id = $1 AND order_type = $2
		ORDER BY id
	`, invoiceID, invoiceLineType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InvoiceLine
	for rows.Next() {
		var line InvoiceLine
		var qty, price, tax, discount, total pgtype.Numeric
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.ProductID, &line.Description,
			&qty, &price, &tax, &discount, &total); err != nil {
			return nil, err
		}
		line.Quantity = numericToDecimal(qty)
		line.UnitPrice = numericToDecimal(price)
		line.TaxAmount = numericToDecimal(tax)
		line.DiscountAmount = numericToDecimal(discount)
		line.Total = numericToDecimal(total)
		out = append(out, line)
	}
	return out, rows.Err()
}

// lockInvoice reads the invoice's amounts under a row lock so the
// subsequent balance write cannot race a concurrent payment.
func lockInvoice(ctx context.Context, tx pgx.Tx, invoiceID int64) (total, paid decimal.Decimal, err error) {
	var t, p pgtype.Numeric
	err = tx.QueryRow(ctx,
		"SELECT total_amount, paid_amount FROM invoices WHERE id = $1 FOR UPDATE", invoiceID).Scan(&t, &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, decimal.Zero, ErrNotFound
		}
		return decimal.Zero, decimal.Zero, err
	}
	return numericToDecimal(t), numericToDecimal(p), nil
}

// applyPaid persists the new paid amount with the derived balance and
// status. Runs inside the caller's transaction.
func applyPaid(ctx context.Context, tx pgx.Tx, invoiceID int64, total, newPaid decimal.Decimal) error {
	status := DeriveStatus(total, newPaid)
	balance := BalanceOf(total, newPaid)
	_, err := tx.Exec(ctx, `
		UPDATE invoices
		SET paid_amount = $2, balance_amount = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`, invoiceID, newPaid.String(), balance.String(), string(status))
	return err
}

func nextNumber(ctx context.Context, tx pgx.Tx, t InvoiceType) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", t.NumberPrefix(), time.Now().Format("0601"))
	var last pgtype.Text
	if err := tx.QueryRow(ctx,
		"SELECT MAX(number) FROM invoices WHERE type = $1 AND number LIKE $2",
		string(t), prefix+"%").Scan(&last); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, sequenceAfter(last.String)), nil
}

func nextPaymentNumber(ctx context.Context, tx pgx.Tx) (string, error) {
	prefix := "PAY-" + time.Now().Format("0601") + "-"
	var last pgtype.Text
	if err := tx.QueryRow(ctx,
		"SELECT MAX(number) FROM payments WHERE number LIKE $1", prefix+"%").Scan(&last); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, sequenceAfter(last.String)), nil
}

// sequenceAfter returns the sequence following the highest number
// issued in a series. Payments can be deleted, so the next sequence
// comes from MAX rather than a row count; a count would reissue a
// number that is still held by a surviving row.
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

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var typ, status string
	var invoiceDate, createdAt, updatedAt pgtype.Timestamptz
	var dueDate pgtype.Timestamptz
	var total, tax, discount, paid, balance pgtype.Numeric
	err := row.Scan(&inv.ID, &typ, &inv.Number, &inv.ContactID, &inv.OrderID,
		&invoiceDate, &dueDate, &status, &total, &tax, &discount, &paid, &balance,
		&inv.Currency, &inv.Notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	inv.Type = InvoiceType(typ)
	inv.Status = InvoiceStatus(status)
	inv.InvoiceDate = invoiceDate.Time
	if dueDate.Valid {
		t := dueDate.Time
		inv.DueDate = &t
	}
	inv.Total = numericToDecimal(total)
	inv.TaxAmount = numericToDecimal(tax)
	inv.DiscountAmount = numericToDecimal(discount)
	inv.Paid = numericToDecimal(paid)
	inv.Balance = numericToDecimal(balance)
	inv.CreatedAt = createdAt.Time
	inv.UpdatedAt = updatedAt.Time
	return inv, nil
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	var method string
	var paymentDate, createdAt, updatedAt pgtype.Timestamptz
	var chequeDate, clearanceDate pgtype.Timestamptz
	var amount pgtype.Numeric
	err := row.Scan(&p.ID, &p.Number, &p.InvoiceID, &paymentDate, &amount, &method,
		&p.Reference, &p.BankAccount, &chequeDate, &clearanceDate, &p.Currency, &p.Notes,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, ErrPaymentNotFound
		}
		return Payment{}, err
	}
	p.Method = PaymentMethod(method)
	p.PaymentDate = paymentDate.Time
	if chequeDate.Valid {
		t := chequeDate.Time
		p.ChequeDate = &t
	}
	if clearanceDate.Valid {
		t := clearanceDate.Time
		p.ClearanceDate = &t
	}
	p.Amount = numericToDecimal(amount)
	p.CreatedAt = createdAt.Time
	p.UpdatedAt = updatedAt.Time
	return p, nil
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
