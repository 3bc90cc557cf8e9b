// Package catalog serves the static product catalog backing the browse
// and recommendation endpoints.
package catalog

import (
	"strings"

	"shoplens/internal/core"
)

var products = []core.Product{
	{
		ID:             "prod_001",
		Name:           "SpeedMaster Pro X",
		Price:          1200.00,
		ImageURL:       "https://placehold.co/400x250/e5e7eb/4b5563?text=SpeedMaster",
		Description:    "A professional-grade laptop for demanding tasks.",
		Specifications: map[string]string{"CPU": "Intel Core i9", "RAM": "32GB", "Storage": "1TB SSD"},
		Rating:         4.8,
		ReviewCount:    256,
		Category:       "laptop",
		Tags:           []string{"high-performance", "professional", "durable"},
	},
	{
		ID:             "prod_002",
		Name:           "FeatherLight Air",
		Price:          950.00,
		ImageURL:       "https://placehold.co/400x250/e5e7eb/4b5563?text=FeatherLight",
		Description:    "Ultra-light and portable for on-the-go productivity.",
		Specifications: map[string]string{"CPU": "Intel Core i5", "RAM": "16GB", "Storage": "512GB SSD"},
		Rating:         4.5,
		ReviewCount:    512,
		Category:       "laptop",
		Tags:           []string{"lightweight", "portable", "student"},
	},
	{
		ID:             "prod_003",
		Name:           "Galaxy View Tab",
		Price:          750.00,
		ImageURL:       "https://placehold.co/400x250/e5e7eb/4b5563?text=Galaxy+View",
		Description:    "A stunning tablet for media consumption and creativity.",
		Specifications: map[string]string{"Screen": "12.9-inch Liquid Retina", "Processor": "M2 Chip"},
		Rating:         4.9,
		ReviewCount:    1024,
		Category:       "tablet",
		Tags:           []string{"large-screen", "creative", "high-resolution"},
	},
	{
		ID:             "prod_004",
		Name:           "PixelPerfect Camera Phone",
		Price:          999.00,
		ImageURL:       "https://placehold.co/400x250/e5e7eb/4b5563?text=PixelPerfect",
		Description:    "Capture life's moments in stunning detail.",
		Specifications: map[string]string{"Camera": "108MP Quad-Camera", "Battery": "5000mAh"},
		Rating:         4.7,
		ReviewCount:    890,
		Category:       "smartphone",
		Tags:           []string{"camera", "photography", "flagship"},
	},
}

var productTypes = []core.ProductType{
	{
		ID:              "laptop",
		Name:            "Laptop",
		Description:     "Powerful and portable for work and play.",
		ImageURL:        "https://placehold.co/200x150/6366f1/ffffff?text=Laptop",
		Characteristics: []string{"High Performance", "Portability", "Versatility"},
		SampleProducts:  products[0:2],
	},
	{
		ID:              "tablet",
		Name:            "Tablet",
		Description:     "The perfect blend of portability and power.",
		ImageURL:        "https://placehold.co/200x150/34d399/ffffff?text=Tablet",
		Characteristics: []string{"Large Screen", "Lightweight", "Creative Tools"},
		SampleProducts:  products[2:3],
	},
	{
		ID:              "smartphone",
		Name:            "Smartphone",
		Description:     "Stay connected and productive on the go.",
		ImageURL:        "https://placehold.co/200x150/f59e0b/ffffff?text=Phone",
		Characteristics: []string{"Ultimate Portability", "Great Cameras", "All-day Battery"},
		SampleProducts:  products[3:4],
	},
}

// All returns every catalog product.
func All() []core.Product {
	return products
}

// ByID finds a product by ID. The second return is false when no
// product matches.
func ByID(id string) (core.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return core.Product{}, false
}

// Types returns every browsable product type.
func Types() []core.ProductType {
	return productTypes
}

// Search matches products whose name or description contains the query,
// case-insensitively. An empty query matches nothing.
func Search(query string) []core.Product {
	if query == "" {
		return nil
	}

	q := strings.ToLower(query)
	var matched []core.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q) {
			matched = append(matched, p)
		}
	}
	return matched
}
