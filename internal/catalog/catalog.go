// Package catalog holds the read-only instrument catalog the analytics
// queries resolve asset ids against.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"OpenFOF/internal/domain/models"
)

// Catalog is an immutable, ordered list of assets indexed by id and symbol.
type Catalog struct {
	assets   []models.Asset
	byID     map[string]int
	bySymbol map[string]int
}

type catalogFile struct {
	Assets []models.Asset `yaml:"assets"`
}

// New validates assets and builds a Catalog preserving their order.
func New(assets []models.Asset) (*Catalog, error) {
	c := &Catalog{
		assets:   make([]models.Asset, 0, len(assets)),
		byID:     make(map[string]int, len(assets)),
		bySymbol: make(map[string]int, len(assets)),
	}
	for i, a := range assets {
		a.ID = strings.TrimSpace(a.ID)
		a.Symbol = strings.TrimSpace(a.Symbol)
		if a.ID == "" || a.Symbol == "" || a.Type == "" {
			return nil, fmt.Errorf("catalog entry %d: id, symbol and type are required", i)
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %q", i, a.ID)
		}
		key := strings.ToUpper(a.Symbol)
		if _, dup := c.bySymbol[key]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate symbol %q", i, a.Symbol)
		}
		c.byID[a.ID] = len(c.assets)
		c.bySymbol[key] = len(c.assets)
		c.assets = append(c.assets, a)
	}
	return c, nil
}

// Load reads a YAML catalog of the form `assets: [{id, symbol, name, type, description}]`.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(f.Assets) == 0 {
		return nil, fmt.Errorf("catalog %s: no assets", path)
	}
	return New(f.Assets)
}

// Len returns the number of assets.
func (c *Catalog) Len() int { return len(c.assets) }

// List returns every asset in catalog order.
func (c *Catalog) List() []models.Asset {
	return append([]models.Asset(nil), c.assets...)
}

// ByID returns the asset with id.
func (c *Catalog) ByID(id string) (models.Asset, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Asset{}, fmt.Errorf("asset %q: %w", id, models.ErrNotFound)
	}
	return c.assets[i], nil
}

// BySymbol returns the asset with symbol, compared case-insensitively.
func (c *Catalog) BySymbol(symbol string) (models.Asset, error) {
	i, ok := c.bySymbol[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return models.Asset{}, fmt.Errorf("symbol %q: %w", symbol, models.ErrNotFound)
	}
	return c.assets[i], nil
}

// ResolveSymbol maps an asset id to its ticker symbol.
func (c *Catalog) ResolveSymbol(id string) (string, error) {
	a, err := c.ByID(id)
	if err != nil {
		return "", err
	}
	return a.Symbol, nil
}

// IsIndex reports whether id names the market-index reference asset.
func (c *Catalog) IsIndex(id string) bool {
	a, err := c.ByID(id)
	return err == nil && a.IsIndex()
}

// Candidates returns every non-index asset in catalog order.
func (c *Catalog) Candidates() []models.Asset {
	out := make([]models.Asset, 0, len(c.assets))
	for _, a := range c.assets {
		if !a.IsIndex() {
			out = append(out, a)
		}
	}
	return out
}

// Relevance tiers of Search, best first.
const (
	scoreExactSymbol  = 100
	scoreSymbolPrefix = 80
	scoreSymbolSubstr = 60
	scoreNameWord     = 40
	scoreNameSubstr   = 30
	scoreDescSubstr   = 10
)

// Search ranks assets matching query case-insensitively by symbol, name and
// description. Equal scores are ordered by symbol. A blank query matches nothing.
func (c *Catalog) Search(query string) []models.Asset {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Asset{}
	}

	type hit struct {
		asset models.Asset
		score int
	}
	var hits []hit
	for _, a := range c.assets {
		if s := relevance(a, q); s > 0 {
			hits = append(hits, hit{asset: a, score: s})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].asset.Symbol < hits[j].asset.Symbol
	})

	out := make([]models.Asset, len(hits))
	for i, h := range hits {
		out[i] = h.asset
	}
	return out
}

func relevance(a models.Asset, q string) int {
	symbol := strings.ToLower(a.Symbol)
	name := strings.ToLower(a.Name)
	switch {
	case symbol == q:
		return scoreExactSymbol
	case strings.HasPrefix(symbol, q):
		return scoreSymbolPrefix
	case strings.Contains(symbol, q):
		return scoreSymbolSubstr
	}
	for _, w := range strings.Fields(name) {
		if strings.HasPrefix(w, q) {
			return scoreNameWord
		}
	}
	if strings.Contains(name, q) {
		return scoreNameSubstr
	}
	if strings.Contains(strings.ToLower(a.Description), q) {
		return scoreDescSubstr
	}
	return 0
}
