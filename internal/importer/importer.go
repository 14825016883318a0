package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-api/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates products keyed
// by SKU. Rows with an empty sku continue the previous product and carry
// extra image URLs.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	SKU       string
	Name      string
	Desc      string
	Price     string
	SalePrice string
	Category  string
	Brand     string
	Inventory int
	Sizes     []string
	Colors    []string
	Tags      []string
	ImageURLs []string
}

// Run parses CSV rows and upserts products grouped by SKU.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}

		if row.SKU != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (images) belong to the current product.
		if current != nil && len(row.ImageURLs) > 0 {
			current.ImageURLs = append(current.ImageURLs, row.ImageURLs...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	if row.SKU == "" || row.Name == "" || row.Price == "" {
		return fmt.Errorf("invalid product row (missing required fields) for sku %q", row.SKU)
	}
	price, err := decimal.NewFromString(row.Price)
	if err != nil || !price.IsPositive() {
		return fmt.Errorf("invalid price for sku %q: %s", row.SKU, row.Price)
	}
	var salePrice *decimal.Decimal
	if row.SalePrice != "" {
		sp, err := decimal.NewFromString(row.SalePrice)
		if err != nil || !sp.IsPositive() {
			return fmt.Errorf("invalid sale price for sku %q: %s", row.SKU, row.SalePrice)
		}
		salePrice = &sp
	}

	p := domain.Product{
		SKU:         row.SKU,
		Name:        row.Name,
		Description: row.Desc,
		Price:       price,
		SalePrice:   salePrice,
		Category:    row.Category,
		Brand:       row.Brand,
		Status:      domain.ProductActive,
		Inventory:   row.Inventory,
		Sizes:       row.Sizes,
		Colors:      row.Colors,
		Tags:        row.Tags,
		Images:      row.ImageURLs,
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.SKU, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[h] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	sku := pick(record, index, "sku")
	imageURL := pick(record, index, "image.url")

	if sku == "" && imageURL == "" {
		return nil
	}

	inventory, _ := strconv.Atoi(pick(record, index, "inventory"))

	row := &csvRow{
		SKU:       sku,
		Name:      pick(record, index, "name"),
		Desc:      pick(record, index, "description"),
		Price:     pick(record, index, "price"),
		SalePrice: pick(record, index, "sale_price"),
		Category:  pick(record, index, "category"),
		Brand:     pick(record, index, "brand"),
		Inventory: inventory,
		Sizes:     splitList(pick(record, index, "sizes")),
		Colors:    splitList(pick(record, index, "colors")),
		Tags:      splitList(pick(record, index, "tags")),
	}
	if imageURL != "" {
		row.ImageURLs = []string{strings.TrimSpace(imageURL)}
	}
	return row
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
