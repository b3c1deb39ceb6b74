package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"pcparts-backend/internal/domain"
	"pcparts-backend/internal/gemini"
	productrepo "pcparts-backend/internal/repository/product"
)

const maxCandidates = 15

// Service turns a free-form shopper question into catalog-grounded product
// recommendations. The model is consulted twice: once to extract a structured
// filter from the question, once to pick from the matching catalog snapshot.
type Service struct {
	generator generator
	products  searcher
	logger    zerolog.Logger
}

type generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Enabled() bool
}

type searcher interface {
	Search(ctx context.Context, f productrepo.SearchFilter) ([]productrepo.CatalogEntry, error)
}

func New(generator *gemini.Client, products productrepo.Repository, logger zerolog.Logger) *Service {
	return &Service{generator: generator, products: products, logger: logger}
}

// Filter is the structured intent extracted from the shopper's question.
type Filter struct {
	ProductTypes []string          `json:"productTypes"`
	Categories   []string          `json:"categories"`
	Brands       []string          `json:"brands"`
	PriceRange   *PriceRange       `json:"priceRange"`
	Attributes   map[string]string `json:"attributes"`
	Keywords     []string          `json:"keywords"`
}

type PriceRange struct {
	MinCents *int64 `json:"minCents"`
	MaxCents *int64 `json:"maxCents"`
}

// Pick is one recommended product with the model's reasoning.
type Pick struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	VariantSKU  string `json:"variantSku"`
	PriceCents  int64  `json:"priceCents"`
	Reason      string `json:"reason"`
}

// Result is the assistant's answer. Fallback is set when the model was
// unavailable and the picks are a plain catalog selection.
type Result struct {
	Query           string `json:"query"`
	Recommendations []Pick `json:"recommendations"`
	Summary         string `json:"summary"`
	Fallback        bool   `json:"fallback"`
}

// Recommend answers a shopper question against the live catalog.
func (s *Service) Recommend(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.Invalid("query required")
	}
	if !s.generator.Enabled() {
		return nil, domain.Invalid("recommendation assistant is not configured")
	}

	filter := s.analyze(ctx, query)
	candidates, err := s.search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return &Result{
			Query:           query,
			Recommendations: []Pick{},
			Summary:         "No products in the catalog match the request.",
			Fallback:        true,
		}, nil
	}

	result, err := s.pick(ctx, query, candidates)
	if err != nil {
		s.logger.Warn().Err(err).Msg("recommendation generation failed, falling back to catalog order")
		return fallbackResult(query, candidates), nil
	}
	return result, nil
}

// analyze asks the model for a structured filter. Any failure degrades to
// keyword search over the raw query.
func (s *Service) analyze(ctx context.Context, query string) Filter {
	prompt := analysisPrompt(query)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Msg("query analysis failed, using keyword fallback")
		return Filter{Keywords: strings.Fields(query)}
	}
	var f Filter
	if err := json.Unmarshal([]byte(gemini.ExtractJSON(text)), &f); err != nil {
		s.logger.Warn().Err(err).Msg("query analysis returned malformed filter")
		return Filter{Keywords: strings.Fields(query)}
	}
	return f
}

// search runs the full filter, then relaxes to product types and price only
// when nothing matches.
func (s *Service) search(ctx context.Context, f Filter) ([]productrepo.CatalogEntry, error) {
	full := searchFilter(f)
	entries, err := s.products.Search(ctx, full)
	if err != nil {
		return nil, err
	}
	entries = filterByAttributes(entries, f.Attributes)
	if len(entries) > 0 {
		return entries, nil
	}

	relaxed := productrepo.SearchFilter{
		ProductTypes:  full.ProductTypes,
		MinPriceCents: full.MinPriceCents,
		MaxPriceCents: full.MaxPriceCents,
		Limit:         maxCandidates,
	}
	if len(relaxed.ProductTypes) == 0 && relaxed.MinPriceCents == nil && relaxed.MaxPriceCents == nil {
		return nil, nil
	}
	return s.products.Search(ctx, relaxed)
}

func (s *Service) pick(ctx context.Context, query string, candidates []productrepo.CatalogEntry) (*Result, error) {
	prompt, err := recommendationPrompt(query, candidates)
	if err != nil {
		return nil, err
	}
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Recommendations []Pick `json:"recommendations"`
		Summary         string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(gemini.ExtractJSON(text)), &parsed); err != nil {
		return nil, fmt.Errorf("parse recommendation response: %w", err)
	}

	// Keep only picks that actually exist in the candidate set; the model
	// occasionally invents ids.
	known := make(map[string]productrepo.CatalogEntry, len(candidates))
	for _, c := range candidates {
		known[c.ID] = c
	}
	picks := make([]Pick, 0, len(parsed.Recommendations))
	for _, p := range parsed.Recommendations {
		entry, ok := known[p.ProductID]
		if !ok {
			continue
		}
		p.ProductName = entry.Name
		if entry.FindVariant(p.VariantSKU) == nil && len(entry.Variants) > 0 {
			p.VariantSKU = entry.Variants[0].SKU
		}
		if p.PriceCents == 0 {
			p.PriceCents = entry.MinPriceCents
		}
		picks = append(picks, p)
	}
	if len(picks) == 0 {
		return fallbackResult(query, candidates), nil
	}
	return &Result{Query: query, Recommendations: picks, Summary: parsed.Summary}, nil
}

func fallbackResult(query string, candidates []productrepo.CatalogEntry) *Result {
	limit := 3
	if len(candidates) < limit {
		limit = len(candidates)
	}
	picks := make([]Pick, 0, limit)
	for _, c := range candidates[:limit] {
		pick := Pick{
			ProductID:   c.ID,
			ProductName: c.Name,
			PriceCents:  c.MinPriceCents,
			Reason:      "Matches your search and is in stock.",
		}
		if len(c.Variants) > 0 {
			pick.VariantSKU = c.Variants[0].SKU
		}
		picks = append(picks, pick)
	}
	return &Result{
		Query:           query,
		Recommendations: picks,
		Summary:         "Closest in-stock matches from the catalog.",
		Fallback:        true,
	}
}

func searchFilter(f Filter) productrepo.SearchFilter {
	out := productrepo.SearchFilter{
		ProductTypes: normalizeTypes(f.ProductTypes),
		Brands:       f.Brands,
		Categories:   f.Categories,
		Keywords:     f.Keywords,
		Limit:        maxCandidates,
	}
	if f.PriceRange != nil {
		out.MinPriceCents = f.PriceRange.MinCents
		out.MaxPriceCents = f.PriceRange.MaxCents
	}
	return out
}

func normalizeTypes(types []string) []string {
	var out []string
	for _, t := range types {
		t = strings.ToLower(strings.TrimSpace(t))
		if domain.ValidProductType(t) {
			out = append(out, t)
		}
	}
	return out
}

// filterByAttributes keeps entries with at least one variant matching every
// requested attribute. Values compare case-insensitively.
func filterByAttributes(entries []productrepo.CatalogEntry, attrs map[string]string) []productrepo.CatalogEntry {
	if len(attrs) == 0 {
		return entries
	}
	var out []productrepo.CatalogEntry
	for _, e := range entries {
		for _, v := range e.Variants {
			if variantMatches(v, attrs) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func variantMatches(v domain.Variant, attrs map[string]string) bool {
	for key, want := range attrs {
		got, ok := v.Attributes[key]
		if !ok || !strings.EqualFold(strings.TrimSpace(got), strings.TrimSpace(want)) {
			return false
		}
	}
	return true
}

func analysisPrompt(query string) string {
	return fmt.Sprintf(`You are a PC hardware shopping assistant. Extract a structured product filter from the customer's question.

Respond with JSON only, matching this shape:
{
  "productTypes": ["component" | "laptop" | "prebuilt" | "accessory"],
  "categories": ["category names"],
  "brands": ["brand names"],
  "priceRange": {"minCents": null, "maxCents": null},
  "attributes": {"attribute": "value"},
  "keywords": ["free-text terms"]
}

Omit or null anything the question does not mention. Prices are integer cents.

Question: %q`, query)
}

func recommendationPrompt(query string, candidates []productrepo.CatalogEntry) (string, error) {
	type snapshotVariant struct {
		SKU        string            `json:"sku"`
		PriceCents int64             `json:"priceCents"`
		Stock      int               `json:"stock"`
		Attributes map[string]string `json:"attributes,omitempty"`
	}
	type snapshotEntry struct {
		ID          string            `json:"id"`
		Name        string            `json:"name"`
		Brand       string            `json:"brand"`
		Category    string            `json:"category"`
		ProductType string            `json:"productType"`
		Description string            `json:"description,omitempty"`
		Discount    int               `json:"discountPercent,omitempty"`
		Variants    []snapshotVariant `json:"variants"`
	}

	snapshot := make([]snapshotEntry, 0, len(candidates))
	for _, c := range candidates {
		entry := snapshotEntry{
			ID:          c.ID,
			Name:        c.Name,
			Brand:       c.BrandName,
			Category:    c.CategoryName,
			ProductType: c.ProductType,
			Description: c.Description,
			Discount:    c.DiscountPercent,
		}
		for _, v := range c.Variants {
			entry.Variants = append(entry.Variants, snapshotVariant{
				SKU:        v.SKU,
				PriceCents: v.PriceCents,
				Stock:      v.Stock,
				Attributes: v.Attributes,
			})
		}
		snapshot = append(snapshot, entry)
	}
	catalog, err := json.Marshal(snapshot)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are a PC hardware shopping assistant. Recommend up to 3 products from the catalog below for the customer's question. Only use products from the catalog; never invent ids or SKUs.

Respond with JSON only:
{
  "recommendations": [
    {"productId": "...", "variantSku": "...", "priceCents": 0, "reason": "one sentence"}
  ],
  "summary": "one or two sentences for the customer"
}

Question: %q

Catalog:
%s`, query, catalog), nil
}
