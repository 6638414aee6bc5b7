package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/ledgerline/internal/money"
	"github.com/ledgerline/ledgerline/internal/orders"
	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

var (
	// ErrNonPositiveAmount is returned for zero or negative payment amounts.
	ErrNonPositiveAmount = errors.New("payment amount must be positive")
	// ErrInvoiceCancelled is returned when paying a cancelled invoice.
	ErrInvoiceCancelled = errors.New("invoice is cancelled")
	// ErrInvoicePaid is returned when cancelling a fully paid invoice.
	ErrInvoicePaid = errors.New("invoice is fully paid")
	// ErrOrderNotInvoiceable is returned when sourcing an invoice from
	// an order that is still DRAFT or already CANCELLED.
	ErrOrderNotInvoiceable = errors.New("order cannot be invoiced")
	// ErrNoLines is returned when a manual invoice carries no lines.
	ErrNoLines = errors.New("invoice has no lines")
)

const defaultCurrency = "INR"

// OrderReader supplies orders when an invoice is sourced from one.
type OrderReader interface {
	Get(ctx context.Context, kind orders.OrderKind, id int64) (orders.Order, error)
}

// PaymentMetrics counts accepted payments. May be nil.
type PaymentMetrics interface {
	PaymentRecorded()
}

// Service owns invoice settlement: creation, cancellation, payments
// with balance recomputation, and the overdue sweep.
type Service struct {
	repo    Repository
	orders  OrderReader
	metrics PaymentMetrics
}

func NewService(repo Repository, orderReader OrderReader, metrics PaymentMetrics) *Service {
	return &Service{repo: repo, orders: orderReader, metrics: metrics}
}

// CreateInvoice builds an invoice from manual lines, or from an order
// when OrderID is set. Sourced orders must be past DRAFT and not
// CANCELLED; their items become the invoice lines.
func (s *Service) CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error) {
	if !req.Type.Valid() {
		return Invoice{}, fmt.Errorf("%w: unknown invoice type %q", httpx.ErrValidation, req.Type)
	}

	inv := Invoice{
		Type:        req.Type,
		ContactID:   req.ContactID,
		OrderID:     req.OrderID,
		InvoiceDate: req.InvoiceDate,
		DueDate:     req.DueDate,
		Status:      StatusUnpaid,
		Currency:    req.Currency,
		Notes:       req.Notes,
		Paid:        decimal.Zero,
	}
	if inv.InvoiceDate.IsZero() {
		inv.InvoiceDate = time.Now()
	}
	if inv.Currency == "" {
		inv.Currency = defaultCurrency
	}

	if req.OrderID != nil {
		if err := s.fillFromOrder(ctx, &inv, *req.OrderID); err != nil {
			return Invoice{}, err
		}
	} else {
		if len(req.Lines) == 0 {
			return Invoice{}, ErrNoLines
		}
		lines, err := buildLines(req.Lines)
		if err != nil {
			return Invoice{}, err
		}
		inv.Lines = lines
	}

	sumLines(&inv)
	inv.Balance = BalanceOf(inv.Total, inv.Paid)

	id, err := s.repo.CreateInvoice(ctx, inv)
	if err != nil {
		return Invoice{}, err
	}
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.ListInvoices(ctx, req)
}

// Cancel marks an invoice CANCELLED. Fully paid invoices stay as they
// are; a cancelled invoice rejects further payments.
func (s *Service) Cancel(ctx context.Context, id int64) (Invoice, error) {
	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if inv.Status == StatusPaid {
		return Invoice{}, ErrInvoicePaid
	}
	if inv.Status != StatusCancelled {
		if err := s.repo.SetInvoiceStatus(ctx, id, StatusCancelled); err != nil {
			return Invoice{}, err
		}
	}
	return s.repo.GetInvoice(ctx, id)
}

// CreatePayment records a payment and applies it to the invoice. The
// amount is not capped at the open balance; overpayment yields PAID
// with a zero balance.
func (s *Service) CreatePayment(ctx context.Context, req CreatePaymentRequest) (Payment, error) {
	if !req.Amount.IsPositive() {
		return Payment{}, ErrNonPositiveAmount
	}
	inv, err := s.repo.GetInvoice(ctx, req.InvoiceID)
	if err != nil {
		return Payment{}, err
	}
	if inv.Status == StatusCancelled {
		return Payment{}, ErrInvoiceCancelled
	}

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	id, err := s.repo.CreatePayment(ctx, Payment{
		InvoiceID:   req.InvoiceID,
		PaymentDate: paymentDate,
		Amount:      money.Round(req.Amount),
		Method:      req.Method,
		Reference:   req.Reference,
		BankAccount: req.BankAccount,
		ChequeDate:  req.ChequeDate,
		Currency:    inv.Currency,
		Notes:       req.Notes,
	})
	if err != nil {
		return Payment{}, err
	}
	if s.metrics != nil {
		s.metrics.PaymentRecorded()
	}
	return s.repo.GetPayment(ctx, id)
}

// UpdatePayment amends a payment. When the amount changes, the
// difference is applied to the invoice and its status re-derived.
func (s *Service) UpdatePayment(ctx context.Context, id int64, req UpdatePaymentRequest) (Payment, error) {
	p, err := s.repo.GetPayment(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return Payment{}, ErrNonPositiveAmount
		}
		p.Amount = money.Round(*req.Amount)
	}
	if req.PaymentDate != nil {
		p.PaymentDate = *req.PaymentDate
	}
	if req.Method != nil {
		p.Method = *req.Method
	}
	if req.Reference != nil {
		p.Reference = *req.Reference
	}
	if req.BankAccount != nil {
		p.BankAccount = *req.BankAccount
	}
	if req.ChequeDate != nil {
		p.ChequeDate = req.ChequeDate
	}
	if req.ClearanceDate != nil {
		p.ClearanceDate = req.ClearanceDate
	}
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	if err := s.repo.UpdatePayment(ctx, p); err != nil {
		return Payment{}, err
	}
	return s.repo.GetPayment(ctx, id)
}

// DeletePayment removes a payment and reverses its effect on the
// invoice, flooring the paid amount at zero.
func (s *Service) DeletePayment(ctx context.Context, id int64) error {
	return s.repo.DeletePayment(ctx, id)
}

func (s *Service) GetPayment(ctx context.Context, id int64) (Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) ListPayments(ctx context.Context, invoiceID int64) ([]Payment, error) {
	return s.repo.ListPayments(ctx, invoiceID)
}

// MarkOverdue flips UNPAID and PARTIAL invoices whose due date has
// passed to OVERDUE and reports how many rows changed.
func (s *Service) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	return s.repo.MarkOverdue(ctx, asOf)
}

func (s *Service) fillFromOrder(ctx context.Context, inv *Invoice, orderID int64) error {
	kind := orders.KindSales
	if inv.Type == TypePurchase {
		kind = orders.KindPurchase
	}
	o, err := s.orders.Get(ctx, kind, orderID)
	if err != nil {
		return err
	}
	if o.Status == orders.StatusDraft || o.Status == orders.StatusCancelled {
		return fmt.Errorf("%w: status %s", ErrOrderNotInvoiceable, o.Status)
	}
	if inv.ContactID == 0 {
		inv.ContactID = o.ContactID
	}
	inv.Lines = make([]InvoiceLine, 0, len(o.Items))
	for _, item := range o.Items {
		inv.Lines = append(inv.Lines, InvoiceLine{
			ProductID:      item.ProductID,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			TaxAmount:      item.TaxAmount,
			DiscountAmount: item.DiscountAmount,
			Total:          item.Total,
		})
	}
	return nil
}

func sumLines(inv *Invoice) {
	total, tax, discount := decimal.Zero, decimal.Zero, decimal.Zero
	for _, line := range inv.Lines {
		total = total.Add(line.Total)
		tax = tax.Add(line.TaxAmount)
		discount = discount.Add(line.DiscountAmount)
	}
	inv.Total = total
	inv.TaxAmount = tax
	inv.DiscountAmount = discount
}

func buildLines(reqs []InvoiceLineRequest) ([]InvoiceLine, error) {
	lines := make([]InvoiceLine, 0, len(reqs))
	for i, req := range reqs {
		if req.Quantity.IsNegative() || req.UnitPrice.IsNegative() ||
			req.TaxAmount.IsNegative() || req.DiscountAmount.IsNegative() {
			return nil, fmt.Errorf("%w: line %d has a negative amount", httpx.ErrValidation, i)
		}
		total := money.LineTotal(req.Quantity, req.UnitPrice, req.TaxAmount, req.DiscountAmount)
		if total.IsNegative() {
			return nil, fmt.Errorf("%w: line %d discount exceeds line value", httpx.ErrValidation, i)
		}
		lines = append(lines, InvoiceLine{
			ProductID:      req.ProductID,
			Description:    req.Description,
			Quantity:       req.Quantity,
			UnitPrice:      req.UnitPrice,
			TaxAmount:      req.TaxAmount,
			DiscountAmount: req.DiscountAmount,
			Total:          total,
		})
	}
	return lines, nil
}
