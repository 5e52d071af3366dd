package dto

// CheckoutRequest is the body of POST /billing/checkout
type CheckoutRequest struct {
	Tier string `json:"tier" binding:"required,oneof=trial pro premium"`
}
