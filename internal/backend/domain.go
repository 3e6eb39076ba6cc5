package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Date accepts both RFC3339 timestamps and bare YYYY-MM-DD values.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("backend: unrecognised date %q", raw)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Time.UTC().Format(time.RFC3339Nano))
}

// Text renders the date as YYYY-MM-DD in UTC, or "" when unset.
func (d Date) Text() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.UTC().Format("2006-01-02")
}

// Customer as stored by the backend.
type Customer struct {
	ID        string `json:"_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Mobile    string `json:"mobile"`
	CreatedAt *Date  `json:"createdAt,omitempty"`
}

// Product as stored by the backend.
type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	CreatedAt   *Date   `json:"createdAt,omitempty"`
}

// Ref is the populated reference embedded in a purchase.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Purchase is a single sale of a product to a customer.
type Purchase struct {
	ID       string  `json:"_id"`
	Date     Date    `json:"date"`
	Customer Ref     `json:"customer"`
	Product  Ref     `json:"product"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Payment  string  `json:"payment"`
}

// Total is price times quantity.
func (p Purchase) Total() float64 {
	return p.Price * float64(p.Quantity)
}

// CustomerInput is the write DTO for customers.
type CustomerInput struct {
	Name   string `json:"name" validate:"required,max=120"`
	Email  string `json:"email" validate:"required,email"`
	Mobile string `json:"mobile" validate:"required,max=32"`
}

// ProductInput is the write DTO for products.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description string  `json:"description" validate:"max=500"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
}

// NewPurchase is the write DTO for purchases.
type NewPurchase struct {
	UserID   string  `json:"userId" validate:"required"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Customer string  `json:"customer" validate:"required"`
	Product  string  `json:"product" validate:"required"`
	Price    float64 `json:"price" validate:"gt=0"`
	Quantity int     `json:"quantity" validate:"gt=0"`
	Payment  string  `json:"payment" validate:"required,oneof=Cash Bank"`
}
