package catalog

import (
	"strings"
	"testing"
)

const sampleCSV = `sku,name,category,color,base_color,brand,price,url,description,available_sizes,image_urls
A1,Black Puffer Jacket,Jackets,black,black,Topshop,£59.99,http://x/a1,Warm winter puffer,S|M|L,http://img/a1-1|http://img/a1-2|http://img/a1-3|http://img/a1-4
A2,Floral Midi Dress,Dresses,multicolor floral print,red,ASOS DESIGN,,http://x/a2,Light summer dress,8|10,
,Unnamed Row Gets Kept,Tops,blue,,,"12.50",,,,
`

func TestReadCSV(t *testing.T) {
	products, err := ReadCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("got %d products, want 3", len(products))
	}

	p := products[0]
	if p.SKU != "A1" || p.Name != "Black Puffer Jacket" {
		t.Errorf("unexpected first record: %+v", p)
	}
	if p.Price == nil || *p.Price != 59.99 {
		t.Errorf("price with currency symbol not parsed: %v", p.Price)
	}
	if len(p.AvailableSizes) != 3 || p.AvailableSizes[1] != "M" {
		t.Errorf("sizes not split: %v", p.AvailableSizes)
	}
	if len(p.ImageURLs) != 4 {
		t.Errorf("image urls not split: %v", p.ImageURLs)
	}

	if products[1].Price != nil {
		t.Errorf("empty price must be nil, got %v", *products[1].Price)
	}
	if products[2].SKU != "" {
		t.Errorf("missing sku must stay empty, got %q", products[2].SKU)
	}
}

func TestReadCSVCleanColumnsPreferred(t *testing.T) {
	csv := "name,name_clean,color,color_clean,price,price_clean\n" +
		"Raw Name,Clean Name,BLK,black,fifty,49.00\n"
	products, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	p := products[0]
	if p.Name != "Clean Name" || p.Color != "black" {
		t.Errorf("clean columns not preferred: %+v", p)
	}
	if p.Price == nil || *p.Price != 49.00 {
		t.Errorf("price_clean not used: %v", p.Price)
	}
}

func TestReadCSVHeaderError(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}
