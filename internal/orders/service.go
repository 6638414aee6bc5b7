package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/ledgerline/ledgerline/internal/money"
	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

// Service owns the order lifecycle: creation, item mutations while in
// DRAFT, and status transitions through the machine.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, kind OrderKind, req CreateOrderRequest) (Order, error) {
	items, err := buildItems(req.Items)
	if err != nil {
		return Order{}, err
	}
	orderDate := req.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}
	id, err := s.repo.Create(ctx, Order{
		Kind:         kind,
		ContactID:    req.ContactID,
		Status:       StatusDraft,
		OrderDate:    orderDate,
		ExpectedDate: req.ExpectedDate,
		Notes:        req.Notes,
		Items:        items,
	})
	if err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, kind, id)
}

func (s *Service) Get(ctx context.Context, kind OrderKind, id int64) (Order, error) {
	return s.repo.Get(ctx, kind, id)
}

func (s *Service) List(ctx context.Context, req ListOrdersRequest) ([]Order, int, error) {
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}
	return s.repo.List(ctx, req)
}

// Update amends a DRAFT order's header and optionally replaces its
// items, then applies a status change when one is requested. Item and
// expected-date changes on a non-DRAFT order fail with ErrOrderLocked.
// Notes accompanying a status change ride along with the transition,
// so a locked order still accepts {status, notes}.
func (s *Service) Update(ctx context.Context, kind OrderKind, id int64, req UpdateOrderRequest) (Order, error) {
	o, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return Order{}, err
	}

	statusChange := req.Status != "" && req.Status != o.Status

	wantsEdit := req.ExpectedDate != nil || req.Items != nil || (req.Notes != nil && !statusChange)
	if wantsEdit {
		if !Editable(o.Status) {
			return Order{}, fmt.Errorf("%w: status %s", ErrOrderLocked, o.Status)
		}
		if req.Notes != nil {
			o.Notes = *req.Notes
		}
		if req.ExpectedDate != nil {
			o.ExpectedDate = req.ExpectedDate
		}
		if err := s.repo.UpdateHeader(ctx, o); err != nil {
			return Order{}, err
		}
		if req.Items != nil {
			items, err := buildItems(*req.Items)
			if err != nil {
				return Order{}, err
			}
			if err := s.repo.ReplaceItems(ctx, kind, id, items); err != nil {
				return Order{}, err
			}
		}
	}

	if statusChange {
		return s.Transition(ctx, kind, id, req.Status, req.Notes)
	}
	return s.repo.Get(ctx, kind, id)
}

// Transition moves the order to target through the status machine.
// Confirming an order with no items fails with ErrEmptyOrder.
func (s *Service) Transition(ctx context.Context, kind OrderKind, id int64, target OrderStatus, notes *string) (Order, error) {
	o, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return Order{}, err
	}
	if err := Transition(o.Status, target); err != nil {
		return Order{}, err
	}
	if target == StatusConfirmed && len(o.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	if err := s.repo.SetStatus(ctx, kind, id, target, notes); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, kind, id)
}

func (s *Service) ReplaceItems(ctx context.Context, kind OrderKind, id int64, reqs []OrderItemRequest) (Order, error) {
	if err := s.requireEditable(ctx, kind, id); err != nil {
		return Order{}, err
	}
	items, err := buildItems(reqs)
	if err != nil {
		return Order{}, err
	}
	if err := s.repo.ReplaceItems(ctx, kind, id, items); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, kind, id)
}

func (s *Service) AddItem(ctx context.Context, kind OrderKind, id int64, req OrderItemRequest) (Order, error) {
	if err := s.requireEditable(ctx, kind, id); err != nil {
		return Order{}, err
	}
	item, err := buildItem(req)
	if err != nil {
		return Order{}, err
	}
	item.OrderID = id
	if _, err := s.repo.InsertItem(ctx, kind, item); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, kind, id)
}

func (s *Service) UpdateItem(ctx context.Context, kind OrderKind, orderID, itemID int64, req OrderItemRequest) (Order, error) {
	if err := s.requireEditable(ctx, kind, orderID); err != nil {
		return Order{}, err
	}
	item, err := buildItem(req)
	if err != nil {
		return Order{}, err
	}
	item.ID = itemID
	item.OrderID = orderID
	if err := s.repo.UpdateItem(ctx, kind, item); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, kind, orderID)
}

func (s *Service) DeleteItem(ctx context.Context, kind OrderKind, orderID, itemID int64) (Order, error) {
	if err := s.requireEditable(ctx, kind, orderID); err != nil {
		return Order{}, err
	}
	if err := s.repo.DeleteItem(ctx, kind, orderID, itemID); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, kind, orderID)
}

func (s *Service) requireEditable(ctx context.Context, kind OrderKind, id int64) error {
	o, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if !Editable(o.Status) {
		return fmt.Errorf("%w: status %s", ErrOrderLocked, o.Status)
	}
	return nil
}

func buildItems(reqs []OrderItemRequest) ([]OrderItem, error) {
	items := make([]OrderItem, 0, len(reqs))
	for i, req := range reqs {
		item, err := buildItem(req)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func buildItem(req OrderItemRequest) (OrderItem, error) {
	if req.Quantity.IsNegative() {
		return OrderItem{}, fmt.Errorf("%w: quantity must not be negative", httpx.ErrValidation)
	}
	if req.UnitPrice.IsNegative() {
		return OrderItem{}, fmt.Errorf("%w: unit_price must not be negative", httpx.ErrValidation)
	}
	if req.TaxAmount.IsNegative() {
		return OrderItem{}, fmt.Errorf("%w: tax_amount must not be negative", httpx.ErrValidation)
	}
	if req.DiscountAmount.IsNegative() {
		return OrderItem{}, fmt.Errorf("%w: discount_amount must not be negative", httpx.ErrValidation)
	}
	total := money.LineTotal(req.Quantity, req.UnitPrice, req.TaxAmount, req.DiscountAmount)
	if total.IsNegative() {
		return OrderItem{}, fmt.Errorf("%w: discount exceeds line value", httpx.ErrValidation)
	}
	return OrderItem{
		ProductID:      req.ProductID,
		Description:    req.Description,
		Quantity:       req.Quantity,
		UnitPrice:      req.UnitPrice,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Total:          total,
	}, nil
}
