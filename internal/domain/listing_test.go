package domain

import "testing"

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{Index: 0, Limit: -1, Order: "DESC"}
	p.Normalize(10)
	if p.Index != 1 || p.Limit != 10 || p.Order != "asc" {
		t.Fatalf("unexpected params: %+v", p)
	}

	p = ListParams{Index: 3, Limit: 20, Order: "desc"}
	p.Normalize(10)
	if p.Offset() != 40 {
		t.Fatalf("expected offset 40, got %d", p.Offset())
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage([]int{1, 2, 3}, 7, ListParams{Index: 1, Limit: 3})
	if page.TotalPages != 3 {
		t.Fatalf("expected 3 pages, got %d", page.TotalPages)
	}

	empty := NewPage[int](nil, 0, ListParams{Index: 1, Limit: 10})
	if empty.Items == nil || len(empty.Items) != 0 {
		t.Fatalf("expected empty non-nil items")
	}
	if empty.TotalPages != 0 {
		t.Fatalf("expected 0 pages, got %d", empty.TotalPages)
	}
}
