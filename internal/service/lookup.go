package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/saadjs/foodlog/internal/logger"
	"github.com/saadjs/foodlog/internal/model"
	"github.com/saadjs/foodlog/internal/provider/openfoodfacts"
)

const (
	DefaultLookupTimeout = 12 * time.Second
	defaultProductTTL    = 30 * 24 * time.Hour
)

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

type LookupSource string

const (
	LookupSourceHistory  LookupSource = "history"
	LookupSourceCache    LookupSource = "cache"
	LookupSourceProvider LookupSource = "provider"
)

// NutrientProvider fetches a product payload for a barcode from a remote
// database.
type NutrientProvider interface {
	LookupBarcode(ctx context.Context, barcode string) (openfoodfacts.Product, []byte, error)
}

// EntryHistory is the part of the ledger the lookup reads from.
type EntryHistory interface {
	LatestByBarcode(barcode string) (model.FoodEntry, bool)
}

type LookupResult struct {
	Barcode          string
	Name             string
	Brand            string
	ServingSizeGrams float64
	Profiles         ProfileSet
	Source           LookupSource
}

// DefaultPortion is the portion a fresh lookup suggests: one serving for
// history hits (which reproduces the earlier entry) and 100 g otherwise.
func (r LookupResult) DefaultPortion() PortionSpec {
	if r.Source == LookupSourceHistory {
		return PortionSpec{Mode: PortionByServing, Multiplier: 1}
	}
	return PortionSpec{Mode: PortionByWeight, Multiplier: 100, ServingSizeGrams: r.ServingSizeGrams}
}

// CheckPortion rejects portions the result cannot scale. History hits only
// know the totals of the earlier entry, so they can be logged by serving
// but not by weight.
func (r LookupResult) CheckPortion(spec PortionSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if r.Source == LookupSourceHistory && spec.Mode == PortionByWeight {
		return validationf("portion mode", "weight is not available for %q, which was resolved from an earlier entry; use --mode serving", r.Name)
	}
	return nil
}

type LookupOutcome struct {
	Result LookupResult
	Err    error
}

// ProductLookup resolves barcodes to nutrient profiles. Ledger history is
// checked first, then the optional product cache, then the remote provider.
// It never writes to the ledger.
type ProductLookup struct {
	history  EntryHistory
	cache    ProductCache
	provider NutrientProvider
	timeout  time.Duration
	ttl      time.Duration
	log      *logger.Logger
}

type LookupOption func(*ProductLookup)

func WithProductCache(cache ProductCache) LookupOption {
	return func(p *ProductLookup) { p.cache = cache }
}

func WithLookupTimeout(d time.Duration) LookupOption {
	return func(p *ProductLookup) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func WithLookupLogger(log *logger.Logger) LookupOption {
	return func(p *ProductLookup) {
		if log != nil {
			p.log = log
		}
	}
}

func NewProductLookup(history EntryHistory, provider NutrientProvider, opts ...LookupOption) *ProductLookup {
	p := &ProductLookup{
		history:  history,
		provider: provider,
		timeout:  DefaultLookupTimeout,
		ttl:      defaultProductTTL,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *ProductLookup) Resolve(ctx context.Context, barcode string) (LookupResult, error) {
	barcode = strings.TrimSpace(barcode)
	if !barcodePattern.MatchString(barcode) {
		return LookupResult{}, &LookupError{Barcode: barcode, Reason: LookupInvalidBarcode}
	}
	if result, ok, err := p.fromHistory(barcode); ok || err != nil {
		return result, err
	}
	return p.resolveRemote(ctx, barcode)
}

// ResolveAsync checks ledger history on the calling goroutine and runs the
// cache and provider tiers in the background. The channel receives exactly
// one outcome. Callers that stop waiting simply drop the channel.
func (p *ProductLookup) ResolveAsync(ctx context.Context, barcode string) <-chan LookupOutcome {
	out := make(chan LookupOutcome, 1)
	barcode = strings.TrimSpace(barcode)
	if !barcodePattern.MatchString(barcode) {
		out <- LookupOutcome{Err: &LookupError{Barcode: barcode, Reason: LookupInvalidBarcode}}
		return out
	}
	if result, ok, err := p.fromHistory(barcode); ok || err != nil {
		out <- LookupOutcome{Result: result, Err: err}
		return out
	}
	go func() {
		result, err := p.resolveRemote(ctx, barcode)
		out <- LookupOutcome{Result: result, Err: err}
	}()
	return out
}

func (p *ProductLookup) fromHistory(barcode string) (LookupResult, bool, error) {
	if p.history == nil {
		return LookupResult{}, false, nil
	}
	entry, ok := p.history.LatestByBarcode(barcode)
	if !ok {
		return LookupResult{}, false, nil
	}
	p.log.Debug("barcode %s resolved from entry %s", barcode, entry.ID)
	set, err := historyProfiles(entry)
	if err != nil {
		return LookupResult{}, false, &LookupError{Barcode: barcode, Reason: LookupMalformed, Err: err}
	}
	return LookupResult{
		Barcode:  barcode,
		Name:     entry.Name,
		Profiles: set,
		Source:   LookupSourceHistory,
	}, true, nil
}

func (p *ProductLookup) resolveRemote(ctx context.Context, barcode string) (LookupResult, error) {
	if p.cache != nil {
		cached, found, err := p.cache.Get(barcode)
		if err != nil {
			p.log.Warn("product cache read for %s: %v", barcode, err)
		} else if found {
			p.log.Debug("barcode %s resolved from product cache", barcode)
			return resultFromProduct(cached, LookupSourceCache)
		}
	}
	if p.provider == nil {
		return LookupResult{}, &LookupError{Barcode: barcode, Reason: LookupUnavailable, Err: errors.New("no product provider configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	p.log.Info("fetching barcode %s from provider", barcode)
	product, raw, err := p.provider.LookupBarcode(ctx, barcode)
	if err != nil {
		return LookupResult{}, classifyLookupError(barcode, err)
	}
	product.Barcode = barcode
	result, err := resultFromProduct(product, LookupSourceProvider)
	if err != nil {
		return LookupResult{}, err
	}
	if p.cache != nil {
		if err := p.cache.Put(product, raw, time.Now().Add(p.ttl)); err != nil {
			p.log.Warn("product cache write for %s: %v", barcode, err)
		}
	}
	return result, nil
}

func resultFromProduct(product openfoodfacts.Product, source LookupSource) (LookupResult, error) {
	set, err := BuildProfileSet(productValues(product))
	if err != nil {
		return LookupResult{}, &LookupError{Barcode: product.Barcode, Reason: LookupMalformed, Err: err}
	}
	return LookupResult{
		Barcode:          product.Barcode,
		Name:             product.Name,
		Brand:            product.Brand,
		ServingSizeGrams: product.ServingSizeGrams,
		Profiles:         set,
		Source:           source,
	}, nil
}

func productValues(p openfoodfacts.Product) map[NutrientKey]NutrientValues {
	out := make(map[NutrientKey]NutrientValues)
	for key, v := range productFields(&p) {
		out[key] = NutrientValues{Per100g: v.Per100g, PerServing: v.PerServing}
	}
	return out
}

// historyProfiles treats a logged entry's totals as one serving.
func historyProfiles(e model.FoodEntry) (ProfileSet, error) {
	values := []struct {
		key   NutrientKey
		value float64
	}{
		{NutrientEnergy, float64(e.Calories)},
		{NutrientCarbs, e.CarbsG},
		{NutrientProtein, e.ProteinG},
		{NutrientFat, e.FatG},
	}
	profiles := make([]NutrientProfile, 0, len(values))
	for _, v := range values {
		serving := v.value
		p, err := NewNutrientProfile(v.key, 0, &serving)
		if err != nil {
			return ProfileSet{}, err
		}
		profiles = append(profiles, p)
	}
	return NewProfileSet(profiles...)
}

func classifyLookupError(barcode string, err error) error {
	reason := LookupUnavailable
	var netErr net.Error
	switch {
	case errors.Is(err, openfoodfacts.ErrProductNotFound):
		reason = LookupNotFound
	case errors.Is(err, openfoodfacts.ErrMalformedPayload):
		reason = LookupMalformed
	case errors.Is(err, context.DeadlineExceeded):
		reason = LookupTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		reason = LookupTimeout
	}
	return &LookupError{Barcode: barcode, Reason: reason, Err: fmt.Errorf("openfoodfacts: %w", err)}
}
