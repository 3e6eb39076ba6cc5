package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/view"
)

// Record page kinds.
const (
	RecordsCustomers = "customers"
	RecordsProducts  = "products"
	RecordsPurchases = "purchases"
)

var recordTitles = map[string]string{
	RecordsCustomers: "Customer List",
	RecordsProducts:  "Inventory List",
	RecordsPurchases: "Purchase List",
}

// recordDone maps the done query value set after a successful write to its banner.
var recordDone = map[string]string{
	"customer-added":   "Customer added successfully.",
	"customer-updated": "Customer updated successfully.",
	"customer-deleted": "Customer deleted successfully.",
	"product-added":    "Product added successfully.",
	"product-updated":  "Product updated successfully.",
	"product-deleted":  "Product deleted successfully.",
	"purchase-added":   "Purchase added successfully.",
}

func (h *Handler) mountRecordPages(r chi.Router) {
	r.Get("/customers", h.recordsPage(RecordsCustomers))
	r.Post("/customers", h.submitCustomer)
	r.Post("/customers/{id}/edit", h.submitCustomerEdit)
	r.Post("/customers/{id}/delete", h.submitCustomerDelete)

	r.Get("/products", h.recordsPage(RecordsProducts))
	r.Post("/products", h.submitProduct)
	r.Post("/products/{id}/edit", h.submitProductEdit)
	r.Post("/products/{id}/delete", h.submitProductDelete)

	r.Get("/purchases", h.recordsPage(RecordsPurchases))
	r.Post("/purchases", h.submitPurchase)
}

func (h *Handler) recordsPage(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var notice *shared.Notice
		if msg, ok := recordDone[r.URL.Query().Get("done")]; ok {
			notice = &shared.Notice{Kind: shared.NoticeSuccess, Message: msg}
		}
		h.renderRecords(w, r, kind, http.StatusOK, notice)
	}
}

func (h *Handler) renderRecords(w http.ResponseWriter, r *http.Request, kind string, status int, notice *shared.Notice) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := shared.Load(ctx, func(ctx context.Context) (RecordsPage, error) {
		return h.loadRecords(ctx, kind)
	})
	if res.Err != nil {
		h.logger.Warn("load records", slog.String("kind", kind), slog.Any("error", res.Err))
		if notice == nil {
			notice = res.Notice()
		}
	}
	page := res.Data
	page.Kind = kind
	page.Title = recordTitles[kind]
	page.EditID = r.URL.Query().Get("edit")

	data := view.TemplateData{
		Title:       page.Title,
		Notice:      notice,
		CurrentPath: "/" + kind,
		Data:        page,
	}
	if err := h.templates.RenderStatus(w, status, "pages/"+kind+".html", data); err != nil {
		h.handleServerError(w, "render records page", err)
	}
}

// loadRecords fetches the collections a records page shows. The purchases page
// also needs customers and products for its form.
func (h *Handler) loadRecords(ctx context.Context, kind string) (RecordsPage, error) {
	var (
		page                           RecordsPage
		customers, products, purchases bool
	)
	switch kind {
	case RecordsCustomers:
		customers = true
	case RecordsProducts:
		products = true
	default:
		customers, products, purchases = true, true, true
	}

	g, gctx := errgroup.WithContext(ctx)
	if customers {
		g.Go(func() error {
			var err error
			page.Customers, err = h.records.ListCustomers(gctx, h.userID())
			return err
		})
	}
	if products {
		g.Go(func() error {
			var err error
			page.Products, err = h.records.ListProducts(gctx, h.userID())
			return err
		})
	}
	if purchases {
		g.Go(func() error {
			var err error
			page.Purchases, err = h.records.ListPurchases(gctx, h.userID())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return RecordsPage{}, err
	}
	return page, nil
}

// applyWrite runs a backend write. Success redirects to the list with a done
// banner; failure re-renders the list with the error banner.
func (h *Handler) applyWrite(w http.ResponseWriter, r *http.Request, kind, done string, write func(context.Context) error) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res := shared.Load(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, write(ctx)
	})
	if res.OK() {
		http.Redirect(w, r, "/"+kind+"?done="+done, http.StatusSeeOther)
		return
	}

	notice := res.Notice()
	status := upstreamStatus(res.Err)
	if errors.Is(res.Err, httpx.ErrValidation) {
		notice.Message = formMessage(res.Err)
		status = http.StatusBadRequest
	} else {
		h.logger.Warn("records write", slog.String("kind", kind), slog.Any("error", res.Err))
	}
	h.renderRecords(w, r, kind, status, notice)
}

func (h *Handler) checkForm(in any) error {
	if err := h.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %w", httpx.ErrValidation, err)
	}
	return nil
}

func (h *Handler) submitCustomer(w http.ResponseWriter, r *http.Request) {
	in := customerForm(r)
	h.applyWrite(w, r, RecordsCustomers, "customer-added", func(ctx context.Context) error {
		if err := h.checkForm(in); err != nil {
			return err
		}
		_, err := h.records.AddCustomer(ctx, h.userID(), in)
		return err
	})
}

func (h *Handler) submitCustomerEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in := customerForm(r)
	h.applyWrite(w, r, RecordsCustomers, "customer-updated", func(ctx context.Context) error {
		if err := h.checkForm(in); err != nil {
			return err
		}
		_, err := h.records.EditCustomer(ctx, id, in)
		return err
	})
}

func (h *Handler) submitCustomerDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.applyWrite(w, r, RecordsCustomers, "customer-deleted", func(ctx context.Context) error {
		return h.records.DeleteCustomer(ctx, id)
	})
}

func (h *Handler) submitProduct(w http.ResponseWriter, r *http.Request) {
	in, parseErr := productForm(r)
	h.applyWrite(w, r, RecordsProducts, "product-added", func(ctx context.Context) error {
		if parseErr != nil {
			return parseErr
		}
		if err := h.checkForm(in); err != nil {
			return err
		}
		_, err := h.records.AddProduct(ctx, h.userID(), in)
		return err
	})
}

func (h *Handler) submitProductEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, parseErr := productForm(r)
	h.applyWrite(w, r, RecordsProducts, "product-updated", func(ctx context.Context) error {
		if parseErr != nil {
			return parseErr
		}
		if err := h.checkForm(in); err != nil {
			return err
		}
		_, err := h.records.EditProduct(ctx, id, in)
		return err
	})
}

func (h *Handler) submitProductDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.applyWrite(w, r, RecordsProducts, "product-deleted", func(ctx context.Context) error {
		return h.records.DeleteProduct(ctx, id)
	})
}

func (h *Handler) submitPurchase(w http.ResponseWriter, r *http.Request) {
	in, parseErr := purchaseForm(r)
	in.UserID = h.userID()
	h.applyWrite(w, r, RecordsPurchases, "purchase-added", func(ctx context.Context) error {
		if parseErr != nil {
			return parseErr
		}
		if in.Price == 0 && in.Product != "" {
			price, err := h.productPrice(ctx, in.Product)
			if err != nil {
				return err
			}
			in.Price = price
		}
		if err := h.checkForm(in); err != nil {
			return err
		}
		return h.records.AddPurchase(ctx, in)
	})
}

// productPrice fills a purchase price left blank with the product's list price.
func (h *Handler) productPrice(ctx context.Context, productID string) (float64, error) {
	products, err := h.records.ListProducts(ctx, h.userID())
	if err != nil {
		return 0, err
	}
	for _, p := range products {
		if p.ID == productID {
			return p.Price, nil
		}
	}
	return 0, fmt.Errorf("%w: product %q not found", httpx.ErrValidation, productID)
}

func customerForm(r *http.Request) backend.CustomerInput {
	return backend.CustomerInput{
		Name:   strings.TrimSpace(r.PostFormValue("name")),
		Email:  strings.TrimSpace(r.PostFormValue("email")),
		Mobile: strings.TrimSpace(r.PostFormValue("mobile")),
	}
}

func productForm(r *http.Request) (backend.ProductInput, error) {
	in := backend.ProductInput{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	var err error
	if in.Price, err = parseFloatField(r, "price"); err != nil {
		return in, err
	}
	if in.Quantity, err = parseIntField(r, "quantity"); err != nil {
		return in, err
	}
	return in, nil
}

func purchaseForm(r *http.Request) (backend.NewPurchase, error) {
	in := backend.NewPurchase{
		Date:     strings.TrimSpace(r.PostFormValue("date")),
		Customer: strings.TrimSpace(r.PostFormValue("customer")),
		Product:  strings.TrimSpace(r.PostFormValue("product")),
		Payment:  strings.TrimSpace(r.PostFormValue("payment")),
	}
	var err error
	if in.Price, err = parseFloatField(r, "price"); err != nil {
		return in, err
	}
	if in.Quantity, err = parseIntField(r, "quantity"); err != nil {
		return in, err
	}
	return in, nil
}

func parseFloatField(r *http.Request, name string) (float64, error) {
	raw := strings.TrimSpace(r.PostFormValue(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", httpx.ErrValidation, name)
	}
	return v, nil
}

func parseIntField(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PostFormValue(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a whole number", httpx.ErrValidation, name)
	}
	return v, nil
}

// formMessage turns validator field errors into a sentence per field.
func formMessage(err error) string {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return validationMessage(err)
	}
	msgs := make([]string, 0, len(fields))
	for _, fe := range fields {
		if fe.Tag() == "required" {
			msgs = append(msgs, fe.Field()+" is required.")
			continue
		}
		msgs = append(msgs, fe.Field()+" is invalid.")
	}
	return strings.Join(msgs, " ")
}
