package catalog

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/okian/storefront/internal/domain/product"
)

// Generator price range and rounding.
const (
	minPrice       = 0.99
	maxPrice       = 499.99
	priceDecimals  = 100
	missingPercent = 5
)

var (
	adjectives = []string{"Classic", "Compact", "Deluxe", "Eco", "Ergo", "Rustic", "Smart", "Vintage", "Zen", "Élite"}
	nouns      = []string{"Backpack", "Blender", "Candle", "Chair", "Headphones", "Kettle", "Lamp", "Mug", "Sneakers", "Watch"}
	categories = []string{"electronics", "home", "kitchen", "outdoors", "fashion", "toys"}
)

type generatorConfig struct {
	rnd          *rand.Rand
	sparseFields bool
}

// GenerateOption configures Generate.
type GenerateOption func(*generatorConfig)

// WithSeed makes generation deterministic.
func WithSeed(seed uint64) GenerateOption {
	return func(c *generatorConfig) {
		c.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithSparseFields leaves out price or category on a few records, the way
// hand-maintained catalogs do.
func WithSparseFields(enabled bool) GenerateOption {
	return func(c *generatorConfig) {
		c.sparseFields = enabled
	}
}

// Generate creates n random products with unique ids.
func Generate(n int, opts ...GenerateOption) ([]product.Product, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, n)
	}
	cfg := generatorConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.rnd == nil {
		cfg.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	products := make([]product.Product, n)
	for i := range products {
		products[i] = generateOne(&cfg)
	}
	return products, nil
}

func generateOne(cfg *generatorConfig) product.Product {
	r := cfg.rnd
	p := product.Product{
		product.FieldID:   uuid.NewString(),
		product.FieldName: adjectives[r.IntN(len(adjectives))] + " " + nouns[r.IntN(len(nouns))],
		"inStock":         r.IntN(4) != 0,
	}
	if !cfg.sparseFields || r.IntN(100) >= missingPercent {
		p[product.FieldPrice] = math.Round((minPrice+r.Float64()*(maxPrice-minPrice))*priceDecimals) / priceDecimals
	}
	if !cfg.sparseFields || r.IntN(100) >= missingPercent {
		p[product.FieldCategory] = categories[r.IntN(len(categories))]
	}
	return p
}
