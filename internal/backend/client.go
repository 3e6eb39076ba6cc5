// Package backend is the HTTP client for the REST collaborator that owns
// customers, products and purchases.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
)

const maxBodySize = 8 << 20

// Records is the full set of backend operations.
type Records interface {
	ListCustomers(ctx context.Context, userID string) ([]Customer, error)
	AddCustomer(ctx context.Context, userID string, in CustomerInput) (*Customer, error)
	EditCustomer(ctx context.Context, id string, in CustomerInput) (*Customer, error)
	DeleteCustomer(ctx context.Context, id string) error
	ListProducts(ctx context.Context, userID string) ([]Product, error)
	AddProduct(ctx context.Context, userID string, in ProductInput) (*Product, error)
	EditProduct(ctx context.Context, id string, in ProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, id string) error
	ListPurchases(ctx context.Context, userID string) ([]Purchase, error)
	AddPurchase(ctx context.Context, in NewPurchase) error
}

// Client calls the backend over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	validate   *validator.Validate
}

var _ Records = (*Client)(nil)

// NewClient builds a client. A zero timeout falls back to 10s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) ListCustomers(ctx context.Context, userID string) ([]Customer, error) {
	var out []Customer
	if err := c.do(ctx, http.MethodGet, "/customer/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddCustomer(ctx context.Context, userID string, in CustomerInput) (*Customer, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out Customer
	if err := c.do(ctx, http.MethodPost, "/customer/add/"+url.PathEscape(userID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EditCustomer(ctx context.Context, id string, in CustomerInput) (*Customer, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out Customer
	if err := c.do(ctx, http.MethodPut, "/customer/edit/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/customer/delete/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListProducts(ctx context.Context, userID string) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/product/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddProduct(ctx context.Context, userID string, in ProductInput) (*Product, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out Product
	if err := c.do(ctx, http.MethodPost, "/product/add/"+url.PathEscape(userID), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EditProduct(ctx context.Context, id string, in ProductInput) (*Product, error) {
	if err := c.check(in); err != nil {
		return nil, err
	}
	var out Product
	if err := c.do(ctx, http.MethodPut, "/product/edit/"+url.PathEscape(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/product/delete/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListPurchases(ctx context.Context, userID string) ([]Purchase, error) {
	var out []Purchase
	if err := c.do(ctx, http.MethodGet, "/purchase/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddPurchase records a purchase. The response payload is not decoded because
// the backend returns unpopulated references.
func (c *Client) AddPurchase(ctx context.Context, in NewPurchase) error {
	if err := c.check(in); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/purchase/add", in, nil)
}

func (c *Client) check(in any) error {
	if err := c.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", httpx.ErrValidation, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Err: fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return &APIError{Status: resp.StatusCode, Err: fmt.Errorf("%w: read %s %s: %v", ErrUnavailable, method, path, err)}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return &APIError{Status: resp.StatusCode, Err: fmt.Errorf("decode %s %s: %w", method, path, decodeErr)}
	}
	if !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Status: resp.StatusCode, Err: fmt.Errorf("decode %s %s data: %w", method, path, err)}
	}
	return nil
}
