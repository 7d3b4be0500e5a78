// Package catalog holds the immutable product catalog served by the
// search engine. Records are loaded once at startup and never mutated,
// so the Store needs no synchronization.
package catalog

// Product is one catalog entry. Price is nil when the source data has
// no usable price for the record.
type Product struct {
	SKU            string
	Name           string
	ProductType    string
	Category       string
	Color          string
	BaseColor      string
	Brand          string
	Price          *float64
	URL            string
	Description    string
	AvailableSizes []string
	ImageURLs      []string
}

// Store is a read-only view over the loaded catalog.
type Store struct {
	products []Product
}

// NewStore creates a Store over the given products. The slice is owned
// by the Store afterwards and must not be modified by the caller.
func NewStore(products []Product) *Store {
	return &Store{products: products}
}

// Products returns the full catalog. Callers must treat the result as
// read-only.
func (s *Store) Products() []Product {
	return s.products
}

// Len returns the number of catalog records.
func (s *Store) Len() int {
	return len(s.products)
}
