package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads products from a headered CSV file. Column names follow
// the cleaned ASOS export: sku, name, product_type, category, color,
// base_color, brand, price, url, description, available_sizes,
// image_urls. Unknown columns are ignored; missing columns yield empty
// fields. Rows with an unparsable price get a nil price rather than
// failing the load.
func LoadCSV(path string) ([]Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses catalog records from r. See LoadCSV for the format.
func ReadCSV(r io.Reader) ([]Product, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var products []Product
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv row: %w", err)
		}

		p := Product{
			SKU:         field(row, "sku"),
			Name:        firstNonEmpty(field(row, "name_clean"), field(row, "name")),
			ProductType: field(row, "product_type"),
			Category:    firstNonEmpty(field(row, "category_clean"), field(row, "category")),
			Color:       firstNonEmpty(field(row, "color_clean"), field(row, "color")),
			BaseColor:   field(row, "base_color"),
			Brand:       field(row, "brand"),
			URL:         field(row, "url"),
			Description: field(row, "description"),
		}
		p.Price = parsePrice(firstNonEmpty(field(row, "price_clean"), field(row, "price")))
		p.AvailableSizes = splitList(field(row, "available_sizes"))
		p.ImageURLs = splitList(field(row, "image_urls"))

		if p.Name == "" {
			continue // unusable row
		}
		products = append(products, p)
	}
	return products, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// parsePrice accepts plain numbers and values with a leading currency
// symbol ("£24.99"). Returns nil for anything unparsable.
func parsePrice(s string) *float64 {
	s = strings.TrimLeft(s, "£$€ ")
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// splitList parses a "|" or "," separated list field into trimmed,
// non-empty elements.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	sep := ","
	if strings.Contains(s, "|") {
		sep = "|"
	}
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
