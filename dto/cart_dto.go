package dto

type AddToCartDTO struct {
	ProductID string `json:"productId" binding:"required"`
}

type RemoveFromCartDTO struct {
	// Empty productId clears the whole cart.
	ProductID string `json:"productId"`
}

type UpdateQuantityDTO struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}
