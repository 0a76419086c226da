package dto

// CreateProductDTO arrives as the "data" part of a multipart form, so it is
// decoded with encoding/json and checked by hand rather than bound by gin.
type CreateProductDTO struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	IsFeatured  bool    `json:"isFeatured"`
}
