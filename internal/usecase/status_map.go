package usecase

import domain "github.com/jayedsikder/commerceflow-api/internal/entity"

// MapGatewayStatus maps the validation endpoint's status vocabulary onto
// order statuses. Anything unrecognized maps to unknown, which parks the
// order without guessing a terminal state.
func MapGatewayStatus(s string) domain.Status {
	switch s {
	case "VALID", "VALIDATED":
		return domain.StatusValid
	case "PENDING":
		return domain.StatusPending
	case "FAILED":
		return domain.StatusFailed
	case "CANCELLED":
		return domain.StatusCancelled
	case "EXPIRED":
		return domain.StatusExpired
	case "UNATTEMPTED":
		return domain.StatusUnattempted
	default:
		return domain.StatusUnknown
	}
}
