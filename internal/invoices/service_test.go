package invoices

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/orders"
)

type fakeRepo struct {
	nextInvoiceID int64
	nextPaymentID int64
	invoices      map[int64]*Invoice
	payments      map[int64]*Payment
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		invoices: make(map[int64]*Invoice),
		payments: make(map[int64]*Payment),
	}
}

func (f *fakeRepo) CreateInvoice(_ context.Context, inv Invoice) (int64, error) {
	f.nextInvoiceID++
	inv.ID = f.nextInvoiceID
	inv.Number = fmt.Sprintf("%s-%s-%04d", inv.Type.NumberPrefix(), time.Now().Format("0601"), f.nextInvoiceID)
	for i := range inv.Lines {
		inv.Lines[i].InvoiceID = inv.ID
	}
	f.invoices[inv.ID] = &inv
	return inv.ID, nil
}

func (f *fakeRepo) GetInvoice(_ context.Context, id int64) (Invoice, error) {
	inv, ok := f.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	cp := *inv
	cp.Payments = nil
	for _, p := range f.payments {
		if p.InvoiceID == id {
			cp.Payments = append(cp.Payments, *p)
		}
	}
	return cp, nil
}

func (f *fakeRepo) ListInvoices(_ context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range f.invoices {
		if inv.Type == req.Type &&
			(req.Status == "" || inv.Status == req.Status) &&
			(req.ContactID == 0 || inv.ContactID == req.ContactID) {
			out = append(out, *inv)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) SetInvoiceStatus(_ context.Context, id int64, status InvoiceStatus) error {
	inv, ok := f.invoices[id]
	if !ok {
		return ErrNotFound
	}
	inv.Status = status
	return nil
}

func (f *fakeRepo) CreatePayment(_ context.Context, p Payment) (int64, error) {
	inv, ok := f.invoices[p.InvoiceID]
	if !ok {
		return 0, ErrNotFound
	}
	f.nextPaymentID++
	p.ID = f.nextPaymentID
	p.Number = fmt.Sprintf("PAY-%s-%04d", time.Now().Format("0601"), f.nextPaymentID)
	f.payments[p.ID] = &p
	f.apply(inv, inv.Paid.Add(p.Amount))
	return p.ID, nil
}

func (f *fakeRepo) UpdatePayment(_ context.Context, p Payment) error {
	old, ok := f.payments[p.ID]
	if !ok {
		return ErrPaymentNotFound
	}
	inv := f.invoices[old.InvoiceID]
	delta := p.Amount.Sub(old.Amount)
	p.InvoiceID = old.InvoiceID
	p.Number = old.Number
	f.payments[p.ID] = &p
	f.apply(inv, inv.Paid.Add(delta))
	return nil
}

func (f *fakeRepo) DeletePayment(_ context.Context, id int64) error {
	p, ok := f.payments[id]
	if !ok {
		return ErrPaymentNotFound
	}
	inv := f.invoices[p.InvoiceID]
	newPaid := inv.Paid.Sub(p.Amount)
	if newPaid.IsNegative() {
		newPaid = decimal.Zero
	}
	delete(f.payments, id)
	f.apply(inv, newPaid)
	return nil
}

func (f *fakeRepo) GetPayment(_ context.Context, id int64) (Payment, error) {
	p, ok := f.payments[id]
	if !ok {
		return Payment{}, ErrPaymentNotFound
	}
	return *p, nil
}

func (f *fakeRepo) ListPayments(_ context.Context, invoiceID int64) ([]Payment, error) {
	var out []Payment
	for _, p := range f.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	var n int64
	for _, inv := range f.invoices {
		if (inv.Status == StatusUnpaid || inv.Status == StatusPartial) &&
			inv.DueDate != nil && inv.DueDate.Before(asOf) {
			inv.Status = StatusOverdue
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) apply(inv *Invoice, newPaid decimal.Decimal) {
	inv.Paid = newPaid
	inv.Balance = BalanceOf(inv.Total, newPaid)
	inv.Status = DeriveStatus(inv.Total, newPaid)
}

type fakeOrderReader struct {
	order orders.Order
	err   error
}

func (f fakeOrderReader) Get(_ context.Context, _ orders.OrderKind, _ int64) (orders.Order, error) {
	return f.order, f.err
}

type countingMetrics struct {
	payments int
}

func (c *countingMetrics) PaymentRecorded() { c.payments++ }

func newTestService(reader OrderReader) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	if reader == nil {
		reader = fakeOrderReader{err: orders.ErrNotFound}
	}
	return NewService(repo, reader, nil), repo
}

func createInvoice(t *testing.T, svc *Service, total string) Invoice {
	t.Helper()
	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Type:      TypeSales,
		ContactID: 3,
		Lines: []InvoiceLineRequest{
			{Description: "services rendered", Quantity: dec("1"), UnitPrice: dec(total)},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, inv.Status)
	require.True(t, inv.Total.Equal(dec(total)))
	require.True(t, inv.Balance.Equal(dec(total)))
	return inv
}

func TestPaymentsDriveStatus(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "1000")

	_, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("400"), Method: MethodBank,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Paid.Equal(dec("400")))
	require.True(t, got.Balance.Equal(dec("600")))
	require.Equal(t, StatusPartial, got.Status)

	_, err = svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("600"), Method: MethodCash,
	})
	require.NoError(t, err)

	got, err = svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Paid.Equal(dec("1000")))
	require.True(t, got.Balance.IsZero())
	require.Equal(t, StatusPaid, got.Status)
}

func TestDeletePaymentRevertsStatus(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "1000")

	first, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("400"), Method: MethodBank,
	})
	require.NoError(t, err)
	_, err = svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("600"), Method: MethodBank,
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePayment(ctx, first.ID))

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Paid.Equal(dec("600")))
	require.True(t, got.Balance.Equal(dec("400")))
	require.Equal(t, StatusPartial, got.Status)
}

func TestDeleteOnlyPaymentRevertsToUnpaid(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "500")

	p, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("500"), Method: MethodCard,
	})
	require.NoError(t, err)

	got, _ := svc.Get(ctx, inv.ID)
	require.Equal(t, StatusPaid, got.Status)

	require.NoError(t, svc.DeletePayment(ctx, p.ID))

	got, err = svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, got.Status)
	require.True(t, got.Paid.IsZero())
	require.True(t, got.Balance.Equal(dec("500")))
}

func TestPaidPlusBalanceEqualsTotal(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "1000")

	amounts := []string{"123.45", "0.01", "500"}
	for _, a := range amounts {
		_, err := svc.CreatePayment(ctx, CreatePaymentRequest{
			InvoiceID: inv.ID, Amount: dec(a), Method: MethodDigital,
		})
		require.NoError(t, err)

		got, err := svc.Get(ctx, inv.ID)
		require.NoError(t, err)
		require.True(t, got.Paid.Add(got.Balance).Equal(got.Total),
			"paid %s + balance %s != total %s", got.Paid, got.Balance, got.Total)
	}
}

func TestOverpaymentNotCapped(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "100")

	_, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("150"), Method: MethodBank,
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Paid.Equal(dec("150")))
	require.True(t, got.Balance.IsZero())
	require.Equal(t, StatusPaid, got.Status)
}

func TestNonPositivePaymentRejected(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "100")

	_, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: decimal.Zero, Method: MethodCash,
	})
	require.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("-5"), Method: MethodCash,
	})
	require.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestPaymentAgainstUnknownInvoice(t *testing.T) {
	svc, _ := newTestService(nil)
	_, err := svc.CreatePayment(context.Background(), CreatePaymentRequest{
		InvoiceID: 999, Amount: dec("10"), Method: MethodCash,
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdatePaymentAppliesDelta(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "1000")

	p, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("400"), Method: MethodBank,
	})
	require.NoError(t, err)

	newAmount := dec("700")
	_, err = svc.UpdatePayment(ctx, p.ID, UpdatePaymentRequest{Amount: &newAmount})
	require.NoError(t, err)

	got, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Paid.Equal(dec("700")))
	require.True(t, got.Balance.Equal(dec("300")))
	require.Equal(t, StatusPartial, got.Status)

	ref := "TXN-42"
	_, err = svc.UpdatePayment(ctx, p.ID, UpdatePaymentRequest{Reference: &ref})
	require.NoError(t, err)

	got, err = svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	require.True(t, got.Paid.Equal(dec("700")), "amount-less update must not shift paid")
}

func TestPaymentCounterBumpedOnSuccessOnly(t *testing.T) {
	repo := newFakeRepo()
	m := &countingMetrics{}
	svc := NewService(repo, fakeOrderReader{err: orders.ErrNotFound}, m)
	ctx := context.Background()

	inv, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
		Type: TypeSales, ContactID: 1,
		Lines: []InvoiceLineRequest{{Description: "a", Quantity: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	_, err = svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("40"), Method: MethodBank,
	})
	require.NoError(t, err)
	require.Equal(t, 1, m.payments)

	_, err = svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: decimal.Zero, Method: MethodBank,
	})
	require.ErrorIs(t, err, ErrNonPositiveAmount)
	require.Equal(t, 1, m.payments)
}

func TestCancelledInvoiceRejectsPayments(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "100")

	_, err := svc.Cancel(ctx, inv.ID)
	require.NoError(t, err)

	_, err = svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("50"), Method: MethodCash,
	})
	require.ErrorIs(t, err, ErrInvoiceCancelled)
}

func TestCancelPaidInvoiceRejected(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	inv := createInvoice(t, svc, "100")

	_, err := svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: inv.ID, Amount: dec("100"), Method: MethodBank,
	})
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, inv.ID)
	require.ErrorIs(t, err, ErrInvoicePaid)
}

func TestOverdueSweep(t *testing.T) {
	svc, repo := newTestService(nil)
	ctx := context.Background()

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	due, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
		Type: TypeSales, ContactID: 1, DueDate: &past,
		Lines: []InvoiceLineRequest{{Description: "a", Quantity: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	notDue, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
		Type: TypeSales, ContactID: 1, DueDate: &future,
		Lines: []InvoiceLineRequest{{Description: "b", Quantity: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)

	paid, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
		Type: TypeSales, ContactID: 1, DueDate: &past,
		Lines: []InvoiceLineRequest{{Description: "c", Quantity: dec("1"), UnitPrice: dec("100")}},
	})
	require.NoError(t, err)
	_, err = svc.CreatePayment(ctx, CreatePaymentRequest{
		InvoiceID: paid.ID, Amount: dec("100"), Method: MethodBank,
	})
	require.NoError(t, err)

	n, err := svc.MarkOverdue(ctx, time.Now())
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	require.Equal(t, StatusOverdue, repo.invoices[due.ID].Status)
	require.Equal(t, StatusUnpaid, repo.invoices[notDue.ID].Status)
	require.Equal(t, StatusPaid, repo.invoices[paid.ID].Status)
}

func TestCreateFromOrder(t *testing.T) {
	order := orders.Order{
		ID:        11,
		Kind:      orders.KindSales,
		ContactID: 8,
		Status:    orders.StatusConfirmed,
		Items: []orders.OrderItem{
			{Description: "widget", Quantity: dec("2"), UnitPrice: dec("100"), TaxAmount: dec("20"), Total: dec("220")},
		},
	}
	svc, _ := newTestService(fakeOrderReader{order: order})

	orderID := int64(11)
	inv, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Type:    TypeSales,
		OrderID: &orderID,
	})
	require.NoError(t, err)
	require.EqualValues(t, 8, inv.ContactID)
	require.True(t, inv.Total.Equal(dec("220")))
	require.Equal(t, StatusUnpaid, inv.Status)
	require.Len(t, inv.Lines, 1)
}

func TestCreateFromDraftOrderRejected(t *testing.T) {
	order := orders.Order{ID: 12, Kind: orders.KindSales, Status: orders.StatusDraft}
	svc, _ := newTestService(fakeOrderReader{order: order})

	orderID := int64(12)
	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Type:    TypeSales,
		OrderID: &orderID,
	})
	require.ErrorIs(t, err, ErrOrderNotInvoiceable)
}

func TestManualInvoiceNeedsLines(t *testing.T) {
	svc, _ := newTestService(nil)
	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Type: TypeSales, ContactID: 1,
	})
	require.ErrorIs(t, err, ErrNoLines)
}
