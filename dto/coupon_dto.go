package dto

type ValidateCouponDTO struct {
	Code string `json:"code" binding:"required"`
}
