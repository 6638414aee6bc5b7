package invoices

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
	"github.com/ledgerline/ledgerline/internal/rbac"
	"github.com/ledgerline/ledgerline/internal/shared"
	"github.com/ledgerline/ledgerline/internal/users"
)

// UserDirectory resolves session users so CONTACT-role callers can be
// scoped to their own invoices.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (users.User, error)
}

// Handler serves invoice and payment endpoints. Vendor bills and
// customer invoices carry different permissions, so type-dependent
// checks happen in-handler against the matrix.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
	userDir  UserDirectory
}

func NewHandler(logger *slog.Logger, service *Service, validate *validator.Validate, mw rbac.Middleware, userDir UserDirectory) *Handler {
	return &Handler{logger: logger, service: service, validate: validate, rbac: mw, userDir: userDir}
}

// MountRoutes registers invoice routes. The coarse gate admits anyone
// with any invoice permission; per-type checks follow inside.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(
			rbac.PermVendorBillsView, rbac.PermVendorBillsViewOwn,
			rbac.PermCustomerInvoicesView, rbac.PermCustomerInvoicesViewOwn,
		))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermVendorBillsCreate, rbac.PermCustomerInvoicesCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermVendorBillsEdit, rbac.PermCustomerInvoicesEdit))
		r.Post("/{id}/cancel", h.cancel)
	})
}

// MountPaymentRoutes registers payment routes.
func (h *Handler) MountPaymentRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermPaymentsView))
		r.Get("/", h.listPayments)
		r.Get("/{id}", h.showPayment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPaymentsCreate))
		r.Post("/", h.createPayment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPaymentsEdit))
		r.Put("/{id}", h.updatePayment)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermPaymentsDelete))
		r.Delete("/{id}", h.deletePayment)
	})
}

func typePermissions(t InvoiceType) (view, viewOwn, create, edit rbac.Permission) {
	if t == TypePurchase {
		return rbac.PermVendorBillsView, rbac.PermVendorBillsViewOwn,
			rbac.PermVendorBillsCreate, rbac.PermVendorBillsEdit
	}
	return rbac.PermCustomerInvoicesView, rbac.PermCustomerInvoicesViewOwn,
		rbac.PermCustomerInvoicesCreate, rbac.PermCustomerInvoicesEdit
}

func typeFromQuery(raw string) (InvoiceType, bool) {
	switch raw {
	case "purchase", "PURCHASE":
		return TypePurchase, true
	case "sales", "SALES", "":
		return TypeSales, true
	}
	return "", false
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, ok := typeFromQuery(q.Get("type"))
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: unknown invoice type", httpx.ErrValidation))
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	contactID, _ := strconv.ParseInt(q.Get("contact_id"), 10, 64)
	req := ListInvoicesRequest{
		Type:      t,
		Status:    InvoiceStatus(q.Get("status")),
		ContactID: contactID,
		Limit:     limit,
		Offset:    offset,
	}

	if !h.scopeList(w, r, t, &req) {
		return
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoices": list, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	view, viewOwn, _, _ := typePermissions(inv.Type)
	role := h.sessionRole(r)
	if !h.rbac.Matrix.HasPermission(role, view) {
		own, err := h.ownContactID(r)
		if err != nil || !h.rbac.Matrix.HasPermission(role, viewOwn) || own == nil || *own != inv.ContactID {
			httpx.RespondError(w, fmt.Errorf("%w: not your invoice", httpx.ErrForbidden))
			return
		}
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if !h.decode(w, r, &req) {
		return
	}
	_, _, create, _ := typePermissions(req.Type)
	if !h.rbac.Matrix.HasPermission(h.sessionRole(r), create) {
		httpx.RespondError(w, fmt.Errorf("%w: missing permission", httpx.ErrForbidden))
		return
	}
	inv, err := h.service.CreateInvoice(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	_, _, _, edit := typePermissions(inv.Type)
	if !h.rbac.Matrix.HasPermission(h.sessionRole(r), edit) {
		httpx.RespondError(w, fmt.Errorf("%w: missing permission", httpx.ErrForbidden))
		return
	}
	inv, err = h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.service.CreatePayment(r.Context(), req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) updatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.service.UpdatePayment(r.Context(), id, req)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePayment(r.Context(), id); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) showPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.GetPayment(r.Context(), id)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := strconv.ParseInt(r.URL.Query().Get("invoice_id"), 10, 64)
	if err != nil || invoiceID <= 0 {
		httpx.RespondError(w, fmt.Errorf("%w: invoice_id is required", httpx.ErrValidation))
		return
	}
	list, err := h.service.ListPayments(r.Context(), invoiceID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"payments": list})
}

// scopeList narrows the list to the caller's own contact when the role
// only carries the view_own permission. Returns false after writing a
// response.
func (h *Handler) scopeList(w http.ResponseWriter, r *http.Request, t InvoiceType, req *ListInvoicesRequest) bool {
	view, viewOwn, _, _ := typePermissions(t)
	role := h.sessionRole(r)
	if h.rbac.Matrix.HasPermission(role, view) {
		return true
	}
	if !h.rbac.Matrix.HasPermission(role, viewOwn) {
		httpx.RespondError(w, fmt.Errorf("%w: missing permission", httpx.ErrForbidden))
		return false
	}
	own, err := h.ownContactID(r)
	if err != nil {
		h.logger.Error("resolve session user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return false
	}
	if own == nil {
		httpx.RespondError(w, fmt.Errorf("%w: no contact linked to account", httpx.ErrForbidden))
		return false
	}
	req.ContactID = *own
	return true
}

func (h *Handler) sessionRole(r *http.Request) rbac.Role {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return ""
	}
	return rbac.Role(sess.Role())
}

func (h *Handler) ownContactID(r *http.Request) (*int64, error) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, fmt.Errorf("%w: login required", httpx.ErrUnauthorized)
	}
	userID, err := strconv.ParseInt(sess.UserID(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: login required", httpx.ErrUnauthorized)
	}
	u, err := h.userDir.Get(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	return u.ContactID, nil
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid id", httpx.ErrValidation))
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
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPaymentNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
	case errors.Is(err, ErrNonPositiveAmount), errors.Is(err, ErrInvoiceCancelled),
		errors.Is(err, ErrInvoicePaid), errors.Is(err, ErrOrderNotInvoiceable),
		errors.Is(err, ErrNoLines):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	default:
		h.logger.Error("invoice operation", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
