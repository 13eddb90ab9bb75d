package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/arifwidianto08/ngantri-sub000/internal/config"
	"github.com/arifwidianto08/ngantri-sub000/internal/database"
	"github.com/arifwidianto08/ngantri-sub000/internal/ids"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

type seedMenu struct {
	name  string
	price string
}

// demoCatalog is the demo merchant's menu, keyed by category in display order.
var demoCatalog = []struct {
	category string
	menus    []seedMenu
}{
	{"Bakso", []seedMenu{{"Bakso Urat", "25000"}, {"Bakso Telur", "27000"}, {"Mie Ayam Bakso", "23000"}}},
	{"Minuman", []seedMenu{{"Es Teh Manis", "5000"}, {"Es Jeruk", "8000"}}},
}

func main() {
	// CLI flags
	username := flag.String("username", "", "Admin username")
	password := flag.String("password", "", "Admin password")
	demo := flag.Bool("demo", true, "Also seed a demo merchant with a small menu")
	flag.Parse()

	// Fall back to environment variables
	if *username == "" {
		*username = os.Getenv("SEED_USERNAME")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}

	// Fall back to defaults
	if *username == "" {
		*username = "admin"
	}
	if *password == "" {
		*password = "password123"
		log.Println("WARNING: Using default password 'password123'. Change immediately in production!")
	}

	cfg, err := config.Load(os.Getenv("NGANTRI_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// Connect to database
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	// Seed in a transaction so a partial catalog is never left behind
	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	adminID, err := seedAdmin(ctx, tx, *username, *password)
	if err != nil {
		log.Fatalf("Failed to seed admin: %v", err)
	}

	var merchantID string
	if *demo {
		merchantID, err = seedDemoMerchant(ctx, tx, *password)
		if err != nil {
			log.Fatalf("Failed to seed demo merchant: %v", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	log.Println("Seed completed successfully")
	log.Printf("Admin ID: %s", adminID)
	if merchantID != "" {
		log.Printf("Demo merchant ID: %s", merchantID)
	}
}

// seedAdmin creates the admin account if it doesn't exist.
func seedAdmin(ctx context.Context, tx pgx.Tx, username, password string) (string, error) {
	q := database.New(tx)

	existing, err := q.GetAdminByUsername(ctx, username)
	if err == nil {
		log.Printf("Admin '%s' already exists (ID: %s), skipping", username, existing.ID)
		return existing.ID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("check admin: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	admin, err := q.CreateAdmin(ctx, database.CreateAdminParams{
		ID:           ids.New(),
		Username:     username,
		PasswordHash: string(hashed),
		FullName:     "Food Court Admin",
	})
	if err != nil {
		return "", fmt.Errorf("insert admin: %w", err)
	}

	log.Printf("Created admin '%s' (ID: %s)", username, admin.ID)
	return admin.ID, nil
}

// seedDemoMerchant creates the demo merchant with its categories and menus.
// An existing demo merchant is left untouched.
func seedDemoMerchant(ctx context.Context, tx pgx.Tx, password string) (string, error) {
	const (
		merchantName  = "Bakso Pak Kumis"
		merchantPhone = "081234567890"
	)

	var existingID string
	err := tx.QueryRow(ctx,
		`SELECT id FROM merchants WHERE phone = $1 AND deleted_at IS NULL`, merchantPhone,
	).Scan(&existingID)
	if err == nil {
		log.Printf("Merchant '%s' already exists (ID: %s), skipping", merchantName, existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("check merchant: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	merchantID := ids.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO merchants (id, name, phone, password_hash, description, is_available)
		 VALUES ($1, $2, $3, $4, $5, true)`,
		merchantID, merchantName, merchantPhone, string(hashed), "Bakso urat sejak 1998",
	)
	if err != nil {
		return "", fmt.Errorf("insert merchant: %w", err)
	}

	for i, group := range demoCatalog {
		categoryID := ids.New()
		_, err := tx.Exec(ctx,
			`INSERT INTO menu_categories (id, merchant_id, name, sort_order) VALUES ($1, $2, $3, $4)`,
			categoryID, merchantID, group.category, i,
		)
		if err != nil {
			return "", fmt.Errorf("insert category %q: %w", group.category, err)
		}

		for _, m := range group.menus {
			_, err := tx.Exec(ctx,
				`INSERT INTO menus (id, merchant_id, category_id, name, price, is_available)
				 VALUES ($1, $2, $3, $4, $5::numeric, true)`,
				ids.New(), merchantID, categoryID, m.name, m.price,
			)
			if err != nil {
				return "", fmt.Errorf("insert menu %q: %w", m.name, err)
			}
		}
	}

	log.Printf("Created merchant '%s' (ID: %s, phone: %s)", merchantName, merchantID, merchantPhone)
	return merchantID, nil
}
