package importer

import (
	"context"
	"strings"
	"testing"

	"storefront-api/internal/domain"
)

type stubProductRepo struct {
	items []domain.Product
}

func (s *stubProductRepo) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.items = append(s.items, p)
	return &p, nil
}

func TestCSVImporter_Run(t *testing.T) {
	csvData := `sku,name,description,price,sale_price,category,brand,inventory,sizes,colors,tags,image.url
SKU-1,Linen Shirt,Breathable linen,49.99,39.99,shirts,Acme,12,S;M;L,white;sand,summer;linen,https://example.com/img1.jpg
,,,,,,,,,,,https://example.com/img2.jpg
SKU-2,Canvas Tote,,24.5,,bags,Acme,30,,natural,,`

	repo := &stubProductRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 products imported, got %d", count)
	}
	if len(repo.items) != 2 {
		t.Fatalf("expected 2 products saved, got %d", len(repo.items))
	}

	first := repo.items[0]
	if first.SKU != "SKU-1" || first.Name != "Linen Shirt" || first.Inventory != 12 {
		t.Fatalf("unexpected product data: %+v", first)
	}
	if first.Price.String() != "49.99" {
		t.Fatalf("price = %s, want 49.99", first.Price)
	}
	if first.SalePrice == nil || first.SalePrice.String() != "39.99" {
		t.Fatalf("sale price = %v, want 39.99", first.SalePrice)
	}
	if len(first.Images) != 2 {
		t.Fatalf("expected continuation row image appended, got %v", first.Images)
	}
	if len(first.Sizes) != 3 || first.Sizes[1] != "M" {
		t.Fatalf("unexpected sizes: %v", first.Sizes)
	}

	second := repo.items[1]
	if second.SKU != "SKU-2" || second.SalePrice != nil || len(second.Images) != 0 {
		t.Fatalf("unexpected product data: %+v", second)
	}
}

func TestCSVImporter_RejectsBadPrice(t *testing.T) {
	csvData := `sku,name,price
SKU-1,Thing,free`

	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected error for unparseable price")
	}
}

func TestCSVImporter_RejectsMissingName(t *testing.T) {
	csvData := `sku,name,price
SKU-1,,10`

	imp := NewCSVImporter(strings.NewReader(csvData), &stubProductRepo{})
	if _, err := imp.Run(context.Background()); err == nil {
		t.Fatalf("expected error for missing name")
	}
}
