package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/foodlog/internal/provider/openfoodfacts"
)

// ProductCache keeps recently fetched provider payloads so repeat lookups
// for products never logged to the ledger still avoid the network.
type ProductCache interface {
	Get(barcode string) (openfoodfacts.Product, bool, error)
	Put(product openfoodfacts.Product, raw []byte, expiresAt time.Time) error
}

type CachedProduct struct {
	Barcode   string    `json:"barcode"`
	Name      string    `json:"name"`
	FetchedAt time.Time `json:"fetched_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SQLProductCache struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLProductCache(db *sql.DB) *SQLProductCache {
	return &SQLProductCache{db: db, now: time.Now}
}

type cachedValue struct {
	Per100g    float64  `json:"per_100g"`
	PerServing *float64 `json:"per_serving,omitempty"`
}

func (c *SQLProductCache) Get(barcode string) (openfoodfacts.Product, bool, error) {
	var p openfoodfacts.Product
	var nutrientsRaw, expiresAtRaw string
	err := c.db.QueryRow(`
SELECT barcode, name, serving_size_g, nutrients_json, expires_at
FROM product_cache
WHERE barcode = ?
`, strings.TrimSpace(barcode)).Scan(&p.Barcode, &p.Name, &p.ServingSizeGrams, &nutrientsRaw, &expiresAtRaw)
	if err == sql.ErrNoRows {
		return openfoodfacts.Product{}, false, nil
	}
	if err != nil {
		return openfoodfacts.Product{}, false, fmt.Errorf("lookup product cache: %w", err)
	}
	expiresAt, err := time.Parse(time.RFC3339, expiresAtRaw)
	if err != nil {
		return openfoodfacts.Product{}, false, fmt.Errorf("parse product cache expiry: %w", err)
	}
	if c.now().After(expiresAt) {
		return openfoodfacts.Product{}, false, nil
	}
	var values map[string]cachedValue
	if err := json.Unmarshal([]byte(nutrientsRaw), &values); err != nil {
		return openfoodfacts.Product{}, false, fmt.Errorf("decode product cache nutrients: %w", err)
	}
	for key, dst := range productFields(&p) {
		if v, ok := values[string(key)]; ok {
			*dst = openfoodfacts.Value{Per100g: v.Per100g, PerServing: v.PerServing}
		}
	}
	return p, true, nil
}

func (c *SQLProductCache) Put(p openfoodfacts.Product, raw []byte, expiresAt time.Time) error {
	values := make(map[string]cachedValue)
	for key, src := range productFields(&p) {
		values[string(key)] = cachedValue{Per100g: src.Per100g, PerServing: src.PerServing}
	}
	nutrientsJSON, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode product cache nutrients: %w", err)
	}
	var rawStr any
	if json.Valid(raw) {
		rawStr = string(raw)
	}
	_, err = c.db.Exec(`
INSERT INTO product_cache(barcode, name, serving_size_g, nutrients_json, raw_json, fetched_at, expires_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(barcode) DO UPDATE SET
  name=excluded.name,
  serving_size_g=excluded.serving_size_g,
  nutrients_json=excluded.nutrients_json,
  raw_json=excluded.raw_json,
  fetched_at=excluded.fetched_at,
  expires_at=excluded.expires_at
`, p.Barcode, p.Name, p.ServingSizeGrams, string(nutrientsJSON), rawStr, c.now().UTC().Format(time.RFC3339), expiresAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert product cache: %w", err)
	}
	return nil
}

func (c *SQLProductCache) List(limit int) ([]CachedProduct, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := c.db.Query(`SELECT barcode, name, fetched_at, expires_at FROM product_cache ORDER BY fetched_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list product cache: %w", err)
	}
	defer rows.Close()
	out := make([]CachedProduct, 0)
	for rows.Next() {
		var item CachedProduct
		var fetched, expires string
		if err := rows.Scan(&item.Barcode, &item.Name, &fetched, &expires); err != nil {
			return nil, fmt.Errorf("scan product cache: %w", err)
		}
		item.FetchedAt, _ = time.Parse(time.RFC3339, fetched)
		item.ExpiresAt, _ = time.Parse(time.RFC3339, expires)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product cache: %w", err)
	}
	return out, nil
}

// Purge removes one barcode, or every row when barcode is empty.
func (c *SQLProductCache) Purge(barcode string) (int64, error) {
	barcode = strings.TrimSpace(barcode)
	var (
		res sql.Result
		err error
	)
	if barcode == "" {
		res, err = c.db.Exec(`DELETE FROM product_cache`)
	} else {
		res, err = c.db.Exec(`DELETE FROM product_cache WHERE barcode = ?`, barcode)
	}
	if err != nil {
		return 0, fmt.Errorf("purge product cache: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge product cache rows affected: %w", err)
	}
	return affected, nil
}

func productFields(p *openfoodfacts.Product) map[NutrientKey]*openfoodfacts.Value {
	return map[NutrientKey]*openfoodfacts.Value{
		NutrientEnergy:       &p.Energy,
		NutrientCarbs:        &p.Carbs,
		NutrientFiber:        &p.Fiber,
		NutrientSugar:        &p.Sugar,
		NutrientProtein:      &p.Protein,
		NutrientFat:          &p.Fat,
		NutrientSaturatedFat: &p.SaturatedFat,
		NutrientCalcium:      &p.Calcium,
	}
}
