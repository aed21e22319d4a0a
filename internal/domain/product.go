package domain

// Product is a purchasable catalog item. The pipeline never mutates it.
type Product struct {
	ID            string  `json:"id" db:"id" yaml:"id"`
	Name          string  `json:"name" db:"name" yaml:"name"`
	Price         float64 `json:"price" db:"price" yaml:"price"`
	OriginalPrice float64 `json:"originalPrice" db:"original_price" yaml:"original_price"`
	Image         string  `json:"image" db:"image" yaml:"image"`
	Category      string  `json:"category" db:"category" yaml:"category"`
}

// CartLine is a single line in a shopping cart, keyed by product name
type CartLine struct {
	Name     string  `json:"name" db:"name"`
	Price    float64 `json:"price" db:"price"`
	Image    string  `json:"image" db:"image"`
	Quantity int     `json:"quantity" db:"quantity"`
}

// CartItemRequest represents an add-to-cart request
type CartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}
