package population

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func createTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE users (
		user_id INTEGER PRIMARY KEY,
		age INTEGER,
		gender TEXT,
		annual_hhi TEXT,
		education_level TEXT,
		city_tier TEXT,
		grocery_spend REAL,
		tech_adoption_score REAL,
		coupon_usage_rate REAL,
		cart_abandon_rate REAL,
		smartphone_ownership INTEGER,
		laptop_ownership INTEGER,
		tablet_ownership INTEGER,
		yt_usage INTEGER,
		ig_usage INTEGER,
		brand_apple_affinity REAL,
		brand_bose_affinity REAL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	_, err = db.Exec(`INSERT INTO users VALUES
		(1, 24, 'Female', '₹5L-₹10L', 'Graduate', 'Tier-2', 7500, 0.8, 0.6, 0.5, 1, 1, 0, 1, 0, 0.9, 0.2),
		(2, 52, 'Male', '₹2L-₹5L', 'Secondary', 'Tier-3', 4200, 0.3, 0.2, 0.1, 1, 0, 0, 0, 1, 0.1, 0.4)`)
	if err != nil {
		t.Fatalf("insert rows: %v", err)
	}
	return path
}

func TestOpen(t *testing.T) {
	store, err := Open(createTestDB(t), "users", 0)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if store.Len() != 2 {
		t.Fatalf("Expected 2 records, got %d", store.Len())
	}

	r := store.Record(0)
	if r.ID != 1 || r.Age != 24 || r.CityTier != "Tier-2" {
		t.Errorf("Row 1 not mapped: %+v", r)
	}
	if r.IncomeBand != "5L-10L" {
		t.Errorf("Rupee-glyph income band not canonicalized, got %q", r.IncomeBand)
	}
	if r.DeviceCount != 2 {
		t.Errorf("Ownership flags should sum to device count 2, got %d", r.DeviceCount)
	}
	if r.Affinity("apple") != 0.9 {
		t.Errorf("Brand affinity not mapped, got %v", r.Affinity("apple"))
	}

	// Derived fields for columns the dataset lacks.
	if r.PreferredMedia != "YouTube" {
		t.Errorf("Expected dominant platform YouTube, got %q", r.PreferredMedia)
	}
	if r.PriceSensitivity == 0 {
		t.Error("Price sensitivity should be derived from coupon and cart rates")
	}
	if r.BrandAwareness == 0 {
		t.Error("Brand awareness should be derived from affinities")
	}

	r2 := store.Record(1)
	if r2.PreferredMedia != "Instagram" {
		t.Errorf("Expected dominant platform Instagram, got %q", r2.PreferredMedia)
	}
	// Columns absent from the table stay at zero.
	if r2.PrivacyPref != 0 {
		t.Errorf("Missing column should read zero, got %v", r2.PrivacyPref)
	}
}

func TestOpenLimit(t *testing.T) {
	store, err := Open(createTestDB(t), "users", 1)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Expected limit of 1 record, got %d", store.Len())
	}
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.db"), "users", 0)
	if err == nil {
		t.Error("Expected error for missing database")
	}
}
