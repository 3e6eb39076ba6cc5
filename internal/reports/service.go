package reports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/backoffice/internal/backend"
	"github.com/odyssey-erp/backoffice/internal/export"
	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

var (
	// ErrUnknownReport is returned for a report name outside sales, ledger and products.
	ErrUnknownReport = fmt.Errorf("%w: unknown report", httpx.ErrNotFound)
	// ErrCustomerRequired is returned when a ledger is requested without a customer.
	ErrCustomerRequired = fmt.Errorf("%w: customer is required", httpx.ErrValidation)
	// ErrCustomerNotFound is returned when the ledger customer does not exist.
	ErrCustomerNotFound = fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
)

// RecordsReader is the read side of the backend.
type RecordsReader interface {
	ListCustomers(ctx context.Context, userID string) ([]backend.Customer, error)
	ListProducts(ctx context.Context, userID string) ([]backend.Product, error)
	ListPurchases(ctx context.Context, userID string) ([]backend.Purchase, error)
}

// Query selects the rows of a report.
type Query struct {
	Range      export.DateRange
	CustomerID string
	Format     export.Format
}

// Built is a resolved report ready for a page or a sink.
type Built struct {
	Kind     string
	Table    export.Table
	Rows     int
	Source   int
	Customer *backend.Customer
}

// Service loads backend rows for one account and builds reports from them.
type Service struct {
	records RecordsReader
	userID  string
	email   export.EmailSink
}

// NewService constructs the service. now stamps email footers and may be nil.
func NewService(records RecordsReader, userID string, now func() time.Time) *Service {
	return &Service{records: records, userID: userID, email: export.EmailSink{Now: now}}
}

// Build fetches rows and resolves the named report.
func (s *Service) Build(ctx context.Context, kind string, q Query) (Built, error) {
	switch kind {
	case KindSales:
		purchases, err := s.records.ListPurchases(ctx, s.userID)
		if err != nil {
			return Built{}, fmt.Errorf("list purchases: %w", err)
		}
		report := SalesReport(purchases, q.Range)
		return Built{Kind: kind, Table: report.Table(), Rows: len(report.Rows), Source: len(purchases)}, nil
	case KindLedger:
		return s.ledger(ctx, q)
	case KindProducts:
		products, err := s.records.ListProducts(ctx, s.userID)
		if err != nil {
			return Built{}, fmt.Errorf("list products: %w", err)
		}
		report := ProductReport(products, q.Range)
		return Built{Kind: kind, Table: report.Table(), Rows: len(report.Rows), Source: len(products)}, nil
	default:
		return Built{}, fmt.Errorf("%w: %q", ErrUnknownReport, kind)
	}
}

func (s *Service) ledger(ctx context.Context, q Query) (Built, error) {
	if q.CustomerID == "" {
		return Built{}, ErrCustomerRequired
	}
	var (
		customers []backend.Customer
		purchases []backend.Purchase
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.records.ListCustomers(gctx, s.userID)
		if err != nil {
			return fmt.Errorf("list customers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		purchases, err = s.records.ListPurchases(gctx, s.userID)
		if err != nil {
			return fmt.Errorf("list purchases: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Built{}, err
	}

	customer, ok := findCustomer(customers, q.CustomerID)
	if !ok {
		return Built{}, fmt.Errorf("%w: %q", ErrCustomerNotFound, q.CustomerID)
	}
	report, err := LedgerReport(customer, purchases, q.Range, q.Format)
	if err != nil {
		return Built{}, err
	}
	source := 0
	for _, p := range purchases {
		if p.Customer.ID == customer.ID {
			source++
		}
	}
	return Built{Kind: KindLedger, Table: report.Table(), Rows: len(report.Rows), Source: source, Customer: &customer}, nil
}

func findCustomer(customers []backend.Customer, id string) (backend.Customer, bool) {
	for _, c := range customers {
		if c.ID == id {
			return c, true
		}
	}
	return backend.Customer{}, false
}

// Customers lists the account's customers for the ledger picker.
func (s *Service) Customers(ctx context.Context) ([]backend.Customer, error) {
	customers, err := s.records.ListCustomers(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// ComposeEmail builds the plain-text email rendition of a report.
func (s *Service) ComposeEmail(ctx context.Context, kind string, r export.DateRange) (export.Email, error) {
	if kind == KindLedger {
		return export.Email{}, ErrCustomerRequired
	}
	built, err := s.Build(ctx, kind, Query{Range: r, Format: export.FormatEmail})
	if err != nil {
		return export.Email{}, err
	}
	email := s.email.Compose(built.Table)
	email.Report = built.Kind
	return email, nil
}

// Email composes the email rendition of an already built report.
func (s *Service) Email(built Built) export.Email {
	email := s.email.Compose(built.Table)
	email.Report = built.Kind
	return email
}

// Dashboard loads all three collections concurrently and aggregates them.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		customers []backend.Customer
		products  []backend.Product
		purchases []backend.Purchase
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customers, err = s.records.ListCustomers(gctx, s.userID)
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.records.ListProducts(gctx, s.userID)
		return err
	})
	g.Go(func() error {
		var err error
		purchases, err = s.records.ListPurchases(gctx, s.userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}
	return BuildDashboard(customers, products, purchases), nil
}
