package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/odyssey-erp/backoffice/internal/backend"
)

func main() {
	baseURL := getenv("BACKEND_URL", "http://localhost:5000")
	userID := getenv("BACKEND_USER_ID", "1")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client := backend.NewClient(baseURL, 10*time.Second)

	fmt.Println("→ Seeding customers...")
	customers, err := seedCustomers(ctx, client, userID)
	if err != nil {
		log.Fatalf("seed customers: %v", err)
	}

	fmt.Println("→ Seeding products...")
	products, err := seedProducts(ctx, client, userID)
	if err != nil {
		log.Fatalf("seed products: %v", err)
	}

	fmt.Println("→ Seeding purchases...")
	count, err := seedPurchases(ctx, client, userID, customers, products, time.Now().UTC())
	if err != nil {
		log.Fatalf("seed purchases: %v", err)
	}

	fmt.Printf("✓ Seeded %d customers, %d products, %d purchases against %s\n", len(customers), len(products), count, baseURL)
}

func seedCustomers(ctx context.Context, client backend.Records, userID string) ([]*backend.Customer, error) {
	inputs := []backend.CustomerInput{
		{Name: "Ann Walker", Email: "ann@example.com", Mobile: "555-0101"},
		{Name: "Bob Lin", Email: "bob@example.com", Mobile: "555-0102"},
		{Name: "Chidi Okafor", Email: "chidi@example.com", Mobile: "555-0103"},
	}
	out := make([]*backend.Customer, 0, len(inputs))
	for _, in := range inputs {
		c, err := client.AddCustomer(ctx, userID, in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Name, err)
		}
		out = append(out, c)
	}
	return out, nil
}

func seedProducts(ctx context.Context, client backend.Records, userID string) ([]*backend.Product, error) {
	inputs := []backend.ProductInput{
		{Name: "Fountain Pen", Description: "Steel nib, black barrel", Price: 24.5, Quantity: 40},
		{Name: "Ink Bottle", Description: "50ml, blue-black", Price: 12, Quantity: 120},
		{Name: "Notebook", Description: "A5 dotted, 160 pages", Price: 18.75, Quantity: 65},
	}
	out := make([]*backend.Product, 0, len(inputs))
	for _, in := range inputs {
		p, err := client.AddProduct(ctx, userID, in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", in.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// seedPurchases spreads one purchase per customer and product across the last
// three months so the dashboard has a monthly series.
func seedPurchases(ctx context.Context, client backend.Records, userID string, customers []*backend.Customer, products []*backend.Product, now time.Time) (int, error) {
	count := 0
	for i, c := range customers {
		for j, p := range products {
			day := now.AddDate(0, -((i+j)%3), -(i*7 + j))
			payment := "Cash"
			if (i+j)%2 == 1 {
				payment = "Bank"
			}
			err := client.AddPurchase(ctx, backend.NewPurchase{
				UserID:   userID,
				Date:     day.Format("2006-01-02"),
				Customer: c.ID,
				Product:  p.ID,
				Price:    p.Price,
				Quantity: 1 + (i+j)%4,
				Payment:  payment,
			})
			if err != nil {
				return count, fmt.Errorf("%s/%s: %w", c.Name, p.Name, err)
			}
			count++
		}
	}
	return count, nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
