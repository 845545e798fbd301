package service

import (
	"context"
	"testing"

	"github.com/dkozyrev/softvault/pkg/internal/model"
	"github.com/dkozyrev/softvault/pkg/internal/types"
)

func newTestCategory(t *testing.T) (*CategoryService, *CatalogService, *FillService, *IngestService) {
	t.Helper()

	ingest := newTestIngest(t)

	return &CategoryService{ingest.Service},
		&CatalogService{ingest.Service},
		&FillService{ingest.Service},
		ingest
}

func TestCategoryCreateAndList(t *testing.T) {
	cats, _, _, _ := newTestCategory(t)

	first, err := cats.Create(context.Background(), "Utilities")
	if err != nil {
		t.Fatal(err)
	}

	// Same title again returns the existing row.
	again, err := cats.Create(context.Background(), "Utilities")
	if err != nil {
		t.Fatal(err)
	}

	if first.ID != again.ID {
		t.Fatalf("duplicate title created a second category: %d vs %d", first.ID, again.ID)
	}

	if _, err := cats.Create(context.Background(), "  "); err == nil {
		t.Fatal("blank title must be rejected")
	}

	list, err := cats.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(list.Categories) != 1 {
		t.Fatalf("expected 1 category, got %+v", list)
	}
}

func TestCategoryLinkReplacesSet(t *testing.T) {
	cats, catalog, fill, ingest := newTestCategory(t)

	id := mustStore(t, ingest, "ivanov", "c.bin", []byte("categorized"))

	resp := fill.Fill(context.Background(), "ivanov", &types.FillRequest{Items: []types.FillItem{
		{ID: id, Title: "Categorized", Version: "1.0"},
	}})
	if len(resp.Errors) != 0 {
		t.Fatalf("fill failed: %+v", resp.Errors)
	}

	var version model.Version
	if err := cats.dbClient.GetDB().First(&version, id).Error; err != nil {
		t.Fatal(err)
	}

	a, _ := cats.Create(context.Background(), "Alpha")
	b, _ := cats.Create(context.Background(), "Beta")
	c, _ := cats.Create(context.Background(), "Gamma")

	err := cats.Link(context.Background(), "ivanov", &types.CategoryLinkRequest{
		ProductID:   version.ProductID,
		CategoryIDs: []int64{a.ID, b.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Re-linking replaces, never accumulates.
	err = cats.Link(context.Background(), "ivanov", &types.CategoryLinkRequest{
		ProductID:   version.ProductID,
		CategoryIDs: []int64{c.ID},
	})
	if err != nil {
		t.Fatal(err)
	}

	view, err := catalog.ProductView(context.Background(), version.ProductID, false)
	if err != nil {
		t.Fatal(err)
	}

	if len(view.Categories) != 1 || view.Categories[0].Title != "Gamma" {
		t.Fatalf("expected only the new link, got %+v", view.Categories)
	}
}

func TestCategoryLinkUnknownProduct(t *testing.T) {
	cats, _, _, _ := newTestCategory(t)

	err := cats.Link(context.Background(), "ivanov", &types.CategoryLinkRequest{ProductID: 777})
	if err == nil {
		t.Fatal("linking an unknown product must fail")
	}
}

func TestStatsCounters(t *testing.T) {
	cats, _, fill, ingest := newTestCategory(t)
	stats := &StatsService{ingest.Service}
	lc := &LifecycleService{ingest.Service}

	filled := mustStore(t, ingest, "ivanov", "f.bin", []byte("filled content"))
	mustStore(t, ingest, "ivanov", "u.bin", []byte("unfilled content"))
	disabled := mustStore(t, ingest, "ivanov", "d.bin", []byte("disabled content"))

	resp := fill.Fill(context.Background(), "ivanov", &types.FillRequest{Items: []types.FillItem{
		{ID: filled, Title: "Filled", Version: "1.0"},
	}})
	if len(resp.Errors) != 0 {
		t.Fatalf("fill failed: %+v", resp.Errors)
	}

	if err := lc.Disable(context.Background(), disabled, "ivanov"); err != nil {
		t.Fatal(err)
	}

	if _, err := cats.Create(context.Background(), "Misc"); err != nil {
		t.Fatal(err)
	}

	got, err := stats.Collect(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if got.Versions != 3 || got.Products != 1 || got.Categories != 1 {
		t.Fatalf("unexpected totals: %+v", got)
	}

	if got.Disabled != 1 {
		t.Fatalf("expected 1 disabled, got %d", got.Disabled)
	}

	if got.Unfilled != 1 {
		t.Fatalf("expected 1 unfilled active version, got %d", got.Unfilled)
	}

	want := int64(len("filled content") + len("unfilled content"))
	if got.TotalBytes != want {
		t.Fatalf("active bytes %d, want %d", got.TotalBytes, want)
	}
}
