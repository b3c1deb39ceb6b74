package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"pcparts-backend/internal/domain"
	productrepo "pcparts-backend/internal/repository/product"
)

type stubGenerator struct {
	enabled   bool
	responses []string
	errs      []error
	prompts   []string
}

func (s *stubGenerator) Enabled() bool { return s.enabled }

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("no scripted response")
}

type stubSearcher struct {
	results [][]productrepo.CatalogEntry
	filters []productrepo.SearchFilter
}

func (s *stubSearcher) Search(_ context.Context, f productrepo.SearchFilter) ([]productrepo.CatalogEntry, error) {
	i := len(s.filters)
	s.filters = append(s.filters, f)
	if i < len(s.results) {
		return s.results[i], nil
	}
	return nil, nil
}

func entry(id, name, sku string, price int64, attrs map[string]string) productrepo.CatalogEntry {
	return productrepo.CatalogEntry{
		Product: domain.Product{
			ID:          id,
			Name:        name,
			ProductType: domain.ProductTypeComponent,
			Variants:    []domain.Variant{{SKU: sku, PriceCents: price, Stock: 4, Attributes: attrs}},
		},
		BrandName:     "TestBrand",
		CategoryName:  "Graphics Cards",
		MinPriceCents: price,
	}
}

func newTestService(g *stubGenerator, p *stubSearcher) *Service {
	return &Service{generator: g, products: p, logger: zerolog.Nop()}
}

const filterResponse = "```json\n{\"productTypes\":[\"component\"],\"keywords\":[\"gpu\"],\"priceRange\":{\"maxCents\":60000}}\n```"

func TestRecommendHappyPath(t *testing.T) {
	gen := &stubGenerator{
		enabled: true,
		responses: []string{
			filterResponse,
			"```json\n{\"recommendations\":[{\"productId\":\"p1\",\"variantSku\":\"GPU-1\",\"reason\":\"fits the budget\"}],\"summary\":\"Solid midrange pick.\"}\n```",
		},
	}
	search := &stubSearcher{results: [][]productrepo.CatalogEntry{
		{entry("p1", "RTX 4060", "GPU-1", 32900, nil)},
	}}
	svc := newTestService(gen, search)

	res, err := svc.Recommend(context.Background(), "best gpu under 600 euro")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if res.Fallback {
		t.Error("fallback set on happy path")
	}
	if len(res.Recommendations) != 1 {
		t.Fatalf("picks = %d, want 1", len(res.Recommendations))
	}
	pick := res.Recommendations[0]
	if pick.ProductName != "RTX 4060" || pick.PriceCents != 32900 {
		t.Errorf("pick not enriched from catalog: %+v", pick)
	}

	if search.filters[0].MaxPriceCents == nil || *search.filters[0].MaxPriceCents != 60000 {
		t.Errorf("price filter not forwarded: %+v", search.filters[0])
	}
	if !strings.Contains(gen.prompts[1], "RTX 4060") {
		t.Error("catalog snapshot missing from recommendation prompt")
	}
}

func TestRecommendDropsInventedProducts(t *testing.T) {
	gen := &stubGenerator{
		enabled: true,
		responses: []string{
			filterResponse,
			`{"recommendations":[{"productId":"ghost","variantSku":"X","reason":"made up"}],"summary":"..."}`,
		},
	}
	search := &stubSearcher{results: [][]productrepo.CatalogEntry{
		{entry("p1", "RTX 4060", "GPU-1", 32900, nil)},
	}}
	svc := newTestService(gen, search)

	res, err := svc.Recommend(context.Background(), "gpu")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	// Every pick was invented, so the catalog fallback kicks in.
	if !res.Fallback {
		t.Error("expected fallback when all picks are invented")
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0].ProductID != "p1" {
		t.Errorf("fallback picks = %+v", res.Recommendations)
	}
}

func TestRecommendAnalysisFailureFallsBackToKeywords(t *testing.T) {
	gen := &stubGenerator{
		enabled: true,
		errs:    []error{errors.New("timeout")},
		responses: []string{
			"",
			`{"recommendations":[{"productId":"p1","variantSku":"GPU-1","reason":"ok"}],"summary":"s"}`,
		},
	}
	search := &stubSearcher{results: [][]productrepo.CatalogEntry{
		{entry("p1", "RTX 4060", "GPU-1", 32900, nil)},
	}}
	svc := newTestService(gen, search)

	res, err := svc.Recommend(context.Background(), "quiet gpu")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.Recommendations) != 1 {
		t.Fatalf("picks = %d, want 1", len(res.Recommendations))
	}
	if got := search.filters[0].Keywords; len(got) != 2 || got[0] != "quiet" {
		t.Errorf("keyword fallback filter = %+v", got)
	}
}

func TestRecommendRelaxedSearchOnEmptyResult(t *testing.T) {
	gen := &stubGenerator{
		enabled: true,
		responses: []string{
			filterResponse,
			`{"recommendations":[{"productId":"p2","variantSku":"GPU-2","reason":"ok"}],"summary":"s"}`,
		},
	}
	search := &stubSearcher{results: [][]productrepo.CatalogEntry{
		nil, // full filter finds nothing
		{entry("p2", "RX 7600", "GPU-2", 29900, nil)},
	}}
	svc := newTestService(gen, search)

	res, err := svc.Recommend(context.Background(), "gpu")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(search.filters) != 2 {
		t.Fatalf("searches = %d, want 2", len(search.filters))
	}
	relaxed := search.filters[1]
	if len(relaxed.Keywords) != 0 || len(relaxed.Brands) != 0 {
		t.Errorf("relaxed filter still carries narrow terms: %+v", relaxed)
	}
	if len(res.Recommendations) != 1 || res.Recommendations[0].ProductID != "p2" {
		t.Errorf("picks = %+v", res.Recommendations)
	}
}

func TestRecommendNoMatches(t *testing.T) {
	gen := &stubGenerator{enabled: true, responses: []string{`{"keywords":["obscure"]}`}}
	svc := newTestService(gen, &stubSearcher{})

	res, err := svc.Recommend(context.Background(), "something obscure")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !res.Fallback || len(res.Recommendations) != 0 {
		t.Errorf("want empty fallback result, got %+v", res)
	}
}

func TestRecommendDisabled(t *testing.T) {
	svc := newTestService(&stubGenerator{enabled: false}, &stubSearcher{})
	_, err := svc.Recommend(context.Background(), "gpu")
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestFilterByAttributes(t *testing.T) {
	entries := []productrepo.CatalogEntry{
		entry("p1", "Kit A", "RAM-1", 10000, map[string]string{"capacity": "32GB"}),
		entry("p2", "Kit B", "RAM-2", 8000, map[string]string{"capacity": "16GB"}),
	}
	got := filterByAttributes(entries, map[string]string{"capacity": "32gb"})
	if len(got) != 1 || got[0].ID != "p1" {
		t.Errorf("filtered = %+v, want only p1", got)
	}
}
