package domain

// CustomerInfo is constructed fresh from the checkout form for a single
// submission; it is never persisted beyond the order it belongs to.
type CustomerInfo struct {
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}
