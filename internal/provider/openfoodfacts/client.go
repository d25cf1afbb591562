package openfoodfacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const (
	defaultBaseURL = "https://world.openfoodfacts.org"
	defaultTimeout = 12 * time.Second
	userAgent      = "foodlog/1.0 (+https://github.com/saadjs/foodlog)"

	// UnknownProductName is used when a product exists but has no name.
	UnknownProductName = "Unknown product"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrMalformedPayload = errors.New("malformed product payload")
)

// Value is one nutrient as declared by the product. Per100g is 0 when the
// field is missing or unparseable; PerServing is nil in that case.
type Value struct {
	Per100g    float64
	PerServing *float64
}

type Product struct {
	Barcode          string
	Name             string
	Brand            string
	ServingSizeGrams float64
	Energy           Value
	Carbs            Value
	Fiber            Value
	Sugar            Value
	Protein          Value
	Fat              Value
	SaturatedFat     Value
	Calcium          Value
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (Product, []byte, error) {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	url := fmt.Sprintf("%s/api/v2/product/%s.json", base, barcode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Product{}, nil, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return Product{}, nil, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Product{}, nil, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return Product{}, body, fmt.Errorf("barcode %q: %w", barcode, ErrProductNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Product{}, body, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}

	product, err := ParseProduct(body)
	if err != nil {
		return Product{}, body, fmt.Errorf("barcode %q: %w", barcode, err)
	}
	product.Barcode = barcode
	return product, body, nil
}

// ParseProduct reads a product payload. Nutrient fields may be numbers or
// numeric strings.
func ParseProduct(body []byte) (Product, error) {
	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Product{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if parsed.Status != nil && *parsed.Status != 1 {
		return Product{}, ErrProductNotFound
	}
	if parsed.Product == nil {
		return Product{}, fmt.Errorf("%w: missing product object", ErrMalformedPayload)
	}
	p := parsed.Product

	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		name = UnknownProductName
	}
	n := p.Nutriments
	calcium := nutrientValue(n, "calcium")
	calcium.Per100g *= 1000
	if calcium.PerServing != nil {
		mg := *calcium.PerServing * 1000
		calcium.PerServing = &mg
	}
	return Product{
		Name:             name,
		Brand:            strings.TrimSpace(p.Brands),
		ServingSizeGrams: parseServingGrams(*p),
		Energy:           nutrientValue(n, "energy-kcal"),
		Carbs:            nutrientValue(n, "carbohydrates"),
		Fiber:            nutrientValue(n, "fiber"),
		Sugar:            nutrientValue(n, "sugars"),
		Protein:          nutrientValue(n, "proteins"),
		Fat:              nutrientValue(n, "fat"),
		SaturatedFat:     nutrientValue(n, "saturated-fat"),
		Calcium:          calcium,
	}, nil
}

func nutrientValue(n map[string]any, base string) Value {
	var v Value
	if per100g, ok := parseFloatAny(n[base+"_100g"]); ok && per100g >= 0 {
		v.Per100g = per100g
	}
	if perServing, ok := parseFloatAny(n[base+"_serving"]); ok {
		v.PerServing = &perServing
	}
	return v
}

// parseFloatAny accepts numbers and numeric strings. NaN and infinities are
// treated as unparseable.
func parseFloatAny(v any) (float64, bool) {
	f, ok := rawFloat(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func rawFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// parseServingGrams prefers serving_quantity and otherwise keeps the digits of
// serving_size ("30 g" -> 30). Unknown sizes are 0.
func parseServingGrams(p offProduct) float64 {
	if q, ok := parseFloatAny(p.ServingQuantity); ok && q > 0 {
		return q
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' {
			return r
		}
		return -1
	}, p.ServingSize)
	if v, err := strconv.ParseFloat(digits, 64); err == nil && v > 0 {
		return v
	}
	return 0
}

type offResponse struct {
	Status  *int        `json:"status"`
	Product *offProduct `json:"product"`
}

type offProduct struct {
	Code            string         `json:"code"`
	ProductName     string         `json:"product_name"`
	Brands          string         `json:"brands"`
	ServingSize     string         `json:"serving_size"`
	ServingQuantity any            `json:"serving_quantity"`
	Nutriments      map[string]any `json:"nutriments"`
}
