package usecase

import (
	"regexp"
	"strings"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
)

// OrderPayload is the canonical order: plain copies only, so later cart
// mutation cannot affect an in-flight payment session.
type OrderPayload struct {
	Items           []domain.LineItem
	TotalPriceCents int64
	Customer        domain.CustomerInfo
}

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9\s\-()]{7,20}$`)
)

// AssembleOrder converts cart contents plus checkout-form input into an
// order payload. Pure; the first failing rule is returned.
func AssembleOrder(cart *domain.Cart, info domain.CustomerInfo) (OrderPayload, error) {
	if cart == nil || cart.Empty() {
		return OrderPayload{}, &ValidationError{Field: "cart", Reason: "cart is empty"}
	}
	if err := validateCustomer(info); err != nil {
		return OrderPayload{}, err
	}
	return OrderPayload{
		Items:           cart.Snapshot(),
		TotalPriceCents: cart.TotalPriceCents(),
		Customer:        info,
	}, nil
}

func validateCustomer(info domain.CustomerInfo) error {
	if len(strings.TrimSpace(info.FullName)) < 2 {
		return &ValidationError{Field: "fullName", Reason: "must be at least 2 characters"}
	}
	if !emailRe.MatchString(info.Email) {
		return &ValidationError{Field: "email", Reason: "invalid email address"}
	}
	if !phoneRe.MatchString(info.Phone) {
		return &ValidationError{Field: "phone", Reason: "must be 7-20 digits"}
	}
	if len(strings.TrimSpace(info.Address)) < 5 {
		return &ValidationError{Field: "address", Reason: "must be at least 5 characters"}
	}
	if len(strings.TrimSpace(info.City)) < 2 {
		return &ValidationError{Field: "city", Reason: "must be at least 2 characters"}
	}
	pc := strings.TrimSpace(info.PostalCode)
	if len(pc) < 4 || len(pc) > 20 {
		return &ValidationError{Field: "postalCode", Reason: "must be 4-20 characters"}
	}
	return nil
}
