package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

// envelope mirrors the backend response shape so API clients see one contract.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) mountRecordsAPI(r chi.Router) {
	r.Get("/customers", h.listCustomers)
	r.Post("/customers", h.addCustomer)
	r.Put("/customers/{id}", h.editCustomer)
	r.Delete("/customers/{id}", h.deleteCustomer)

	r.Get("/products", h.listProducts)
	r.Post("/products", h.addProduct)
	r.Put("/products/{id}", h.editProduct)
	r.Delete("/products/{id}", h.deleteProduct)

	r.Get("/purchases", h.listPurchases)
	r.Post("/purchases", h.addPurchase)
}

func (h *Handler) userID() string {
	if h.service == nil {
		return ""
	}
	return h.service.userID
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	out, err := h.records.ListCustomers(r.Context(), h.userID())
	h.respondRecords(w, http.StatusOK, "", out, err)
}

func (h *Handler) addCustomer(w http.ResponseWriter, r *http.Request) {
	var in backend.CustomerInput
	if !h.decode(w, r, &in) {
		return
	}
	out, err := h.records.AddCustomer(r.Context(), h.userID(), in)
	h.respondRecords(w, http.StatusCreated, "Customer added", out, err)
}

func (h *Handler) editCustomer(w http.ResponseWriter, r *http.Request) {
	var in backend.CustomerInput
	if !h.decode(w, r, &in) {
		return
	}
	out, err := h.records.EditCustomer(r.Context(), chi.URLParam(r, "id"), in)
	h.respondRecords(w, http.StatusOK, "Customer updated", out, err)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	err := h.records.DeleteCustomer(r.Context(), chi.URLParam(r, "id"))
	h.respondRecords(w, http.StatusOK, "Customer deleted", nil, err)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	out, err := h.records.ListProducts(r.Context(), h.userID())
	h.respondRecords(w, http.StatusOK, "", out, err)
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var in backend.ProductInput
	if !h.decode(w, r, &in) {
		return
	}
	out, err := h.records.AddProduct(r.Context(), h.userID(), in)
	h.respondRecords(w, http.StatusCreated, "Product added", out, err)
}

func (h *Handler) editProduct(w http.ResponseWriter, r *http.Request) {
	var in backend.ProductInput
	if !h.decode(w, r, &in) {
		return
	}
	out, err := h.records.EditProduct(r.Context(), chi.URLParam(r, "id"), in)
	h.respondRecords(w, http.StatusOK, "Product updated", out, err)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.records.DeleteProduct(r.Context(), chi.URLParam(r, "id"))
	h.respondRecords(w, http.StatusOK, "Product deleted", nil, err)
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	out, err := h.records.ListPurchases(r.Context(), h.userID())
	h.respondRecords(w, http.StatusOK, "", out, err)
}

func (h *Handler) addPurchase(w http.ResponseWriter, r *http.Request) {
	var in backend.NewPurchase
	if !h.decode(w, r, &in) {
		return
	}
	in.UserID = h.userID()
	err := h.records.AddPurchase(r.Context(), in)
	h.respondRecords(w, http.StatusCreated, "Purchase added", nil, err)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		h.writeEnvelope(w, http.StatusBadRequest, envelope{Message: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func (h *Handler) respondRecords(w http.ResponseWriter, status int, message string, data any, err error) {
	if err == nil {
		h.writeEnvelope(w, status, envelope{Success: true, Message: message, Data: data})
		return
	}
	switch {
	case errors.Is(err, httpx.ErrValidation):
		h.writeEnvelope(w, http.StatusBadRequest, envelope{Message: validationMessage(err)})
	case errors.Is(err, context.DeadlineExceeded):
		h.writeEnvelope(w, http.StatusGatewayTimeout, envelope{Message: backend.DefaultMessage})
	default:
		h.logger.Warn("records api", slog.Any("error", err))
		h.writeEnvelope(w, upstreamStatus(err), envelope{Message: backend.UserMessage(err)})
	}
}

// upstreamStatus passes backend client errors (4xx) through and reports
// everything else as a bad gateway.
func upstreamStatus(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

func validationMessage(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}

func (h *Handler) writeEnvelope(w http.ResponseWriter, status int, body envelope) {
	httpx.JSON(w, status, body)
}
