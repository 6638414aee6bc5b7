package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	nextOrderID int64
	nextItemID  int64
	orders      map[int64]*Order
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[int64]*Order)}
}

func (f *fakeRepo) Create(_ context.Context, o Order) (int64, error) {
	f.nextOrderID++
	o.ID = f.nextOrderID
	o.Number = fmt.Sprintf("%s-%s-%04d", o.Kind.NumberPrefix(), time.Now().Format("0601"), f.nextOrderID)
	for i := range o.Items {
		f.nextItemID++
		o.Items[i].ID = f.nextItemID
		o.Items[i].OrderID = o.ID
	}
	f.recompute(&o)
	f.orders[o.ID] = &o
	return o.ID, nil
}

func (f *fakeRepo) Get(_ context.Context, kind OrderKind, id int64) (Order, error) {
	o, ok := f.orders[id]
	if !ok || o.Kind != kind {
		return Order{}, ErrNotFound
	}
	cp := *o
	cp.Items = append([]OrderItem(nil), o.Items...)
	return cp, nil
}

func (f *fakeRepo) List(_ context.Context, req ListOrdersRequest) ([]Order, int, error) {
	var out []Order
	for _, o := range f.orders {
		if o.Kind == req.Kind && (req.Status == "" || o.Status == req.Status) {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) UpdateHeader(_ context.Context, o Order) error {
	cur, ok := f.orders[o.ID]
	if !ok {
		return ErrNotFound
	}
	cur.ContactID = o.ContactID
	cur.OrderDate = o.OrderDate
	cur.ExpectedDate = o.ExpectedDate
	cur.Notes = o.Notes
	return nil
}

func (f *fakeRepo) SetStatus(_ context.Context, kind OrderKind, id int64, status OrderStatus, notes *string) error {
	o, ok := f.orders[id]
	if !ok || o.Kind != kind {
		return ErrNotFound
	}
	o.Status = status
	if notes != nil {
		o.Notes = *notes
	}
	return nil
}

func (f *fakeRepo) ReplaceItems(_ context.Context, kind OrderKind, id int64, items []OrderItem) error {
	o, ok := f.orders[id]
	if !ok || o.Kind != kind {
		return ErrNotFound
	}
	if !Editable(o.Status) {
		return fmt.Errorf("%w: status %s", ErrOrderLocked, o.Status)
	}
	o.Items = nil
	for _, item := range items {
		f.nextItemID++
		item.ID = f.nextItemID
		item.OrderID = id
		o.Items = append(o.Items, item)
	}
	f.recompute(o)
	return nil
}

func (f *fakeRepo) InsertItem(_ context.Context, kind OrderKind, item OrderItem) (int64, error) {
	o, ok := f.orders[item.OrderID]
	if !ok || o.Kind != kind {
		return 0, ErrNotFound
	}
	if !Editable(o.Status) {
		return 0, fmt.Errorf("%w: status %s", ErrOrderLocked, o.Status)
	}
	f.nextItemID++
	item.ID = f.nextItemID
	o.Items = append(o.Items, item)
	f.recompute(o)
	return item.ID, nil
}

func (f *fakeRepo) UpdateItem(_ context.Context, kind OrderKind, item OrderItem) error {
	o, ok := f.orders[item.OrderID]
	if !ok || o.Kind != kind {
		return ErrNotFound
	}
	if !Editable(o.Status) {
		return fmt.Errorf("%w: status %s", ErrOrderLocked, o.Status)
	}
	for i := range o.Items {
		if o.Items[i].ID == item.ID {
			o.Items[i] = item
			f.recompute(o)
			return nil
		}
	}
	return ErrItemNotFound
}

func (f *fakeRepo) DeleteItem(_ context.Context, kind OrderKind, orderID, itemID int64) error {
	o, ok := f.orders[orderID]
	if !ok || o.Kind != kind {
		return ErrNotFound
	}
	if !Editable(o.Status) {
		return fmt.Errorf("%w: status %s", ErrOrderLocked, o.Status)
	}
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			f.recompute(o)
			return nil
		}
	}
	return ErrItemNotFound
}

func (f *fakeRepo) recompute(o *Order) {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.Total)
	}
	o.Total = sum
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService() (*Service, *fakeRepo) {
	repo := newFakeRepo()
	return NewService(repo), repo
}

func createDraft(t *testing.T, svc *Service, items []OrderItemRequest) Order {
	t.Helper()
	o, err := svc.Create(context.Background(), KindSales, CreateOrderRequest{
		ContactID: 7,
		Items:     items,
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, o.Status)
	return o
}

func TestConfirmWithItemsThenRevertFails(t *testing.T) {
	svc, _ := newTestService()
	o := createDraft(t, svc, []OrderItemRequest{
		{Description: "widget", Quantity: dec("2"), UnitPrice: dec("100"), TaxAmount: dec("20")},
	})
	require.True(t, o.Total.Equal(dec("220")))

	o, err := svc.Transition(context.Background(), KindSales, o.ID, StatusConfirmed, nil)
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, o.Status)

	_, err = svc.Transition(context.Background(), KindSales, o.ID, StatusDraft, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestConfirmEmptyOrderFails(t *testing.T) {
	svc, repo := newTestService()
	o := createDraft(t, svc, nil)

	_, err := svc.Transition(context.Background(), KindSales, o.ID, StatusConfirmed, nil)
	require.ErrorIs(t, err, ErrEmptyOrder)

	got, err := repo.Get(context.Background(), KindSales, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, got.Status)
}

func TestFullLifecycle(t *testing.T) {
	svc, _ := newTestService()
	o := createDraft(t, svc, []OrderItemRequest{
		{Description: "service fee", Quantity: dec("1"), UnitPrice: dec("500")},
	})

	ctx := context.Background()
	for _, target := range []OrderStatus{StatusConfirmed, StatusInProgress, StatusCompleted} {
		var err error
		o, err = svc.Transition(ctx, KindSales, o.ID, target, nil)
		require.NoError(t, err)
		require.Equal(t, target, o.Status)
	}

	_, err := svc.Transition(ctx, KindSales, o.ID, StatusCancelled, nil)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestItemMutationsRecomputeTotal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o := createDraft(t, svc, []OrderItemRequest{
		{Description: "a", Quantity: dec("2"), UnitPrice: dec("100"), TaxAmount: dec("20")},
	})
	require.True(t, o.Total.Equal(dec("220")))

	o, err := svc.AddItem(ctx, KindSales, o.ID, OrderItemRequest{
		Description: "b", Quantity: dec("3"), UnitPrice: dec("50"), DiscountAmount: dec("10"),
	})
	require.NoError(t, err)
	require.True(t, o.Total.Equal(dec("360")), "got %s", o.Total)

	itemID := o.Items[1].ID
	o, err = svc.UpdateItem(ctx, KindSales, o.ID, itemID, OrderItemRequest{
		Description: "b", Quantity: dec("1"), UnitPrice: dec("50"),
	})
	require.NoError(t, err)
	require.True(t, o.Total.Equal(dec("270")), "got %s", o.Total)

	o, err = svc.DeleteItem(ctx, KindSales, o.ID, itemID)
	require.NoError(t, err)
	require.True(t, o.Total.Equal(dec("220")))

	o, err = svc.ReplaceItems(ctx, KindSales, o.ID, []OrderItemRequest{
		{Description: "c", Quantity: dec("4"), UnitPrice: dec("25")},
	})
	require.NoError(t, err)
	require.True(t, o.Total.Equal(dec("100")))
	require.Len(t, o.Items, 1)
}

func TestItemsLockedAfterConfirm(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o := createDraft(t, svc, []OrderItemRequest{
		{Description: "a", Quantity: dec("1"), UnitPrice: dec("10")},
	})
	_, err := svc.Transition(ctx, KindSales, o.ID, StatusConfirmed, nil)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, KindSales, o.ID, OrderItemRequest{
		Description: "late", Quantity: dec("1"), UnitPrice: dec("5"),
	})
	require.ErrorIs(t, err, ErrOrderLocked)

	_, err = svc.ReplaceItems(ctx, KindSales, o.ID, nil)
	require.ErrorIs(t, err, ErrOrderLocked)

	notes := "late edit"
	_, err = svc.Update(ctx, KindSales, o.ID, UpdateOrderRequest{Notes: &notes})
	require.ErrorIs(t, err, ErrOrderLocked)
}

func TestNegativeLineRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o := createDraft(t, svc, nil)

	_, err := svc.AddItem(ctx, KindSales, o.ID, OrderItemRequest{
		Description: "over-discounted", Quantity: dec("1"), UnitPrice: dec("10"), DiscountAmount: dec("50"),
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "discount exceeds line value")

	_, err = svc.AddItem(ctx, KindSales, o.ID, OrderItemRequest{
		Description: "negative qty", Quantity: dec("-1"), UnitPrice: dec("10"),
	})
	require.Error(t, err)
}

func TestUpdateAppliesItemsThenStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o := createDraft(t, svc, nil)

	items := []OrderItemRequest{
		{Description: "x", Quantity: dec("2"), UnitPrice: dec("100"), TaxAmount: dec("20")},
	}
	o, err := svc.Update(ctx, KindSales, o.ID, UpdateOrderRequest{
		Status: StatusConfirmed,
		Items:  &items,
	})
	require.NoError(t, err)
	require.Equal(t, StatusConfirmed, o.Status)
	require.True(t, o.Total.Equal(dec("220")))
}

func TestUpdateStatusWithNotesOnLockedOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	o := createDraft(t, svc, []OrderItemRequest{
		{Description: "a", Quantity: dec("1"), UnitPrice: dec("10")},
	})
	_, err := svc.Transition(ctx, KindSales, o.ID, StatusConfirmed, nil)
	require.NoError(t, err)

	notes := "rush it"
	o, err = svc.Update(ctx, KindSales, o.ID, UpdateOrderRequest{
		Status: StatusInProgress,
		Notes:  &notes,
	})
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, o.Status)
	require.Equal(t, "rush it", o.Notes)

	// Items stay a locked edit even when a status change rides along.
	items := []OrderItemRequest{{Description: "b", Quantity: dec("1"), UnitPrice: dec("5")}}
	_, err = svc.Update(ctx, KindSales, o.ID, UpdateOrderRequest{
		Status: StatusCompleted,
		Items:  &items,
	})
	require.ErrorIs(t, err, ErrOrderLocked)
}

func TestRepositoryBlocksItemWritesAfterConfirm(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	o := createDraft(t, svc, []OrderItemRequest{
		{Description: "a", Quantity: dec("1"), UnitPrice: dec("10")},
	})
	require.NoError(t, repo.SetStatus(ctx, KindSales, o.ID, StatusConfirmed, nil))

	_, err := repo.InsertItem(ctx, KindSales, OrderItem{OrderID: o.ID, Description: "late", Total: dec("5")})
	require.ErrorIs(t, err, ErrOrderLocked)
	require.ErrorIs(t, repo.ReplaceItems(ctx, KindSales, o.ID, nil), ErrOrderLocked)
	require.ErrorIs(t, repo.DeleteItem(ctx, KindSales, o.ID, o.Items[0].ID), ErrOrderLocked)
}

func TestGetUnknownKindIsNotFound(t *testing.T) {
	svc, _ := newTestService()
	o := createDraft(t, svc, nil)

	_, err := svc.Get(context.Background(), KindPurchase, o.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
