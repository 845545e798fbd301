package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/dkozyrev/softvault/pkg/internal/types"
)

func seedCatalog(t *testing.T) (*CatalogService, *IngestService, *FillService) {
	t.Helper()

	ingest := newTestIngest(t)
	catalog := &CatalogService{ingest.Service}
	fill := &FillService{ingest.Service}

	return catalog, ingest, fill
}

func TestListPagination(t *testing.T) {
	catalog, ingest, _ := seedCatalog(t)

	for i := range 5 {
		mustStore(t, ingest, "ivanov", fmt.Sprintf("file%d.bin", i), []byte(fmt.Sprintf("content %d", i)))
	}

	resp, err := catalog.List(context.Background(), ListOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}

	if resp.Total != 5 || resp.Pages != 3 || len(resp.Versions) != 2 {
		t.Fatalf("unexpected page: total=%d pages=%d len=%d", resp.Total, resp.Pages, len(resp.Versions))
	}

	last, err := catalog.List(context.Background(), ListOptions{Page: 3, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}

	if len(last.Versions) != 1 {
		t.Fatalf("last page should hold the remainder, got %d", len(last.Versions))
	}
}

func TestListHidesDisabledByDefault(t *testing.T) {
	catalog, ingest, _ := seedCatalog(t)
	lc := &LifecycleService{ingest.Service}

	visible := mustStore(t, ingest, "ivanov", "visible.bin", []byte("visible"))
	hidden := mustStore(t, ingest, "ivanov", "hidden.bin", []byte("hidden"))

	if err := lc.Disable(context.Background(), hidden, "ivanov"); err != nil {
		t.Fatal(err)
	}

	resp, err := catalog.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if resp.Total != 1 || resp.Versions[0].ID != visible {
		t.Fatalf("disabled version leaked into the listing: %+v", resp)
	}

	all, err := catalog.List(context.Background(), ListOptions{IncludeDisabled: true})
	if err != nil {
		t.Fatal(err)
	}

	if all.Total != 2 {
		t.Fatalf("moderator view must include disabled versions, got %d", all.Total)
	}
}

func TestListOnlyUnfilled(t *testing.T) {
	catalog, ingest, fill := seedCatalog(t)

	unfilled := mustStore(t, ingest, "ivanov", "raw.bin", []byte("raw"))
	filled := mustStore(t, ingest, "ivanov", "done.bin", []byte("done"))

	resp := fill.Fill(context.Background(), "ivanov", &types.FillRequest{Items: []types.FillItem{
		{ID: filled, Title: "Done", Version: "1.0"},
	}})
	if len(resp.Errors) != 0 {
		t.Fatalf("fill failed: %+v", resp.Errors)
	}

	list, err := catalog.List(context.Background(), ListOptions{OnlyUnfilled: true})
	if err != nil {
		t.Fatal(err)
	}

	if list.Total != 1 || list.Versions[0].ID != unfilled {
		t.Fatalf("unfilled filter wrong: %+v", list)
	}
}

func TestProductViewAndTitles(t *testing.T) {
	catalog, ingest, fill := seedCatalog(t)

	v1 := mustStore(t, ingest, "ivanov", "p1.bin", []byte("p one"))
	v2 := mustStore(t, ingest, "ivanov", "p2.bin", []byte("p two"))

	resp := fill.Fill(context.Background(), "ivanov", &types.FillRequest{Items: []types.FillItem{
		{ID: v1, Title: "Viewer", Version: "1.0"},
		{ID: v2, Title: "Viewer", Version: "2.0"},
	}})
	if len(resp.Errors) != 0 {
		t.Fatalf("fill failed: %+v", resp.Errors)
	}

	list, err := catalog.List(context.Background(), ListOptions{})
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range list.Versions {
		if v.ProductTitle != "Viewer" {
			t.Fatalf("listing must carry product titles: %+v", v)
		}
	}

	view, err := catalog.ProductView(context.Background(), list.Versions[0].ProductID, false)
	if err != nil {
		t.Fatal(err)
	}

	if view.Product.Title != "Viewer" || len(view.Versions) != 2 {
		t.Fatalf("unexpected product view: %+v", view)
	}
}

func TestSearchAndAutocomplete(t *testing.T) {
	catalog, ingest, fill := seedCatalog(t)

	id := mustStore(t, ingest, "ivanov", "s.bin", []byte("searchable"))

	resp := fill.Fill(context.Background(), "ivanov", &types.FillRequest{Items: []types.FillItem{
		{ID: id, Title: "Remote Desktop Agent", Version: "1.0"},
	}})
	if len(resp.Errors) != 0 {
		t.Fatalf("fill failed: %+v", resp.Errors)
	}

	search, err := catalog.Search(context.Background(), "desktop")
	if err != nil {
		t.Fatal(err)
	}

	if len(search.Products) != 1 || search.Products[0].Title != "Remote Desktop Agent" {
		t.Fatalf("substring search failed: %+v", search)
	}

	ac, err := catalog.Autocomplete(context.Background(), "remote", 10)
	if err != nil {
		t.Fatal(err)
	}

	if len(ac.Suggestions) != 1 || ac.Suggestions[0].Value != "Remote Desktop Agent" {
		t.Fatalf("autocomplete failed: %+v", ac)
	}

	if ac.Suggestions[0].Data == 0 {
		t.Fatal("suggestion must carry the product id")
	}

	empty, err := catalog.Search(context.Background(), "   ")
	if err != nil || len(empty.Products) != 0 {
		t.Fatalf("blank query must return empty result, got %+v (%v)", empty, err)
	}
}

func TestDownloadRoundTrip(t *testing.T) {
	catalog, ingest, _ := seedCatalog(t)
	data := []byte("downloadable bytes")
	id := mustStore(t, ingest, "ivanov", "dl.bin", data)

	rc, version, err := catalog.Download(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != string(data) {
		t.Fatal("downloaded content differs from upload")
	}

	if version.StoredName != "dl.bin" {
		t.Fatalf("unexpected stored name %q", version.StoredName)
	}
}

func TestDownloadUnknownVersion(t *testing.T) {
	catalog, _, _ := seedCatalog(t)

	if _, _, err := catalog.Download(context.Background(), 31337); err == nil {
		t.Fatal("unknown version must not download")
	}
}
