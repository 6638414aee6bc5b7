package orders

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/rbac"
)

// Handler serves purchase and sales order endpoints. The {type} URL
// segment selects the kind; permissions differ per kind.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validate, rbac: mw}
}

// MountRoutes registers order routes under a kind-specific prefix.
func (h *Handler) MountRoutes(r chi.Router, kind OrderKind) {
	viewPerm, createPerm, editPerm := kindPermissions(kind)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(viewPerm))
		r.Get("/", h.list(kind))
		r.Get("/{id}", h.show(kind))
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(createPerm))
		r.Post("/", h.create(kind))
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(editPerm))
		r.Put("/{id}", h.update(kind))
		r.Put("/{id}/status", h.transition(kind))
		r.Put("/{id}/items", h.replaceItems(kind))
		r.Post("/{id}/items", h.addItem(kind))
		r.Put("/{id}/items/{itemID}", h.updateItem(kind))
		r.Delete("/{id}/items/{itemID}", h.deleteItem(kind))
	})
}

func kindPermissions(kind OrderKind) (view, create, edit rbac.Permission) {
	if kind == KindPurchase {
		return rbac.PermPurchaseOrdersView, rbac.PermPurchaseOrdersCreate, rbac.PermPurchaseOrdersEdit
	}
	return rbac.PermSalesOrdersView, rbac.PermSalesOrdersCreate, rbac.PermSalesOrdersEdit
}

func (h *Handler) list(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit, _ := strconv.Atoi(q.Get("limit"))
		offset, _ := strconv.Atoi(q.Get("offset"))
		contactID, _ := strconv.ParseInt(q.Get("contact_id"), 10, 64)

		list, total, err := h.service.List(r.Context(), ListOrdersRequest{
			Kind:      kind,
			Status:    OrderStatus(q.Get("status")),
			ContactID: contactID,
			Limit:     limit,
			Offset:    offset,
		})
		if err != nil {
			h.logger.Error("list orders", slog.String("kind", string(kind)), slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"orders": list, "total": total})
	}
}

func (h *Handler) show(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r, "id")
		if !ok {
			return
		}
		o, err := h.service.Get(r.Context(), kind, id)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}

func (h *Handler) create(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateOrderRequest
		if !h.decode(w, r, &req) {
			return
		}
		o, err := h.service.Create(r.Context(), kind, req)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, o)
	}
}

func (h *Handler) update(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r, "id")
		if !ok {
			return
		}
		var req UpdateOrderRequest
		if !h.decode(w, r, &req) {
			return
		}
		o, err := h.service.Update(r.Context(), kind, id, req)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}

func (h *Handler) transition(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r, "id")
		if !ok {
			return
		}
		var req TransitionRequest
		if !h.decode(w, r, &req) {
			return
		}
		o, err := h.service.Transition(r.Context(), kind, id, req.Status, req.Notes)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}

func (h *Handler) replaceItems(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r, "id")
		if !ok {
			return
		}
		var reqs []OrderItemRequest
		if err := httpx.DecodeJSON(r, &reqs); err != nil {
			httpx.RespondError(w, fmt.Errorf("%w: malformed body", httpx.ErrValidation))
			return
		}
		for _, item := range reqs {
			if err := h.validate.Struct(item); err != nil {
				httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
				return
			}
		}
		o, err := h.service.ReplaceItems(r.Context(), kind, id, reqs)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}

func (h *Handler) addItem(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r, "id")
		if !ok {
			return
		}
		var req OrderItemRequest
		if !h.decode(w, r, &req) {
			return
		}
		o, err := h.service.AddItem(r.Context(), kind, id, req)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusCreated, o)
	}
}

func (h *Handler) updateItem(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r, "id")
		if !ok {
			return
		}
		itemID, ok := h.parseID(w, r, "itemID")
		if !ok {
			return
		}
		var req OrderItemRequest
		if !h.decode(w, r, &req) {
			return
		}
		o, err := h.service.UpdateItem(r.Context(), kind, id, itemID, req)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}

func (h *Handler) deleteItem(kind OrderKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.parseID(w, r, "id")
		if !ok {
			return
		}
		itemID, ok := h.parseID(w, r, "itemID")
		if !ok {
			return
		}
		o, err := h.service.DeleteItem(r.Context(), kind, id, itemID)
		if err != nil {
			h.respondErr(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, o)
	}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid %s", httpx.ErrValidation, param))
		return 0, false
	}
	return id, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", httpx.ErrValidation))
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return false
	}
	return true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrItemNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrEmptyOrder), errors.Is(err, ErrOrderLocked):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	default:
		h.logger.Error("order operation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
