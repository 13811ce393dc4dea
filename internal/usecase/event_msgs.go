package usecase

// OrderSettledMsg is published on RabbitMQ after an order transitions to
// valid; downstream consumers send the buyer-facing confirmation.
type OrderSettledMsg struct {
	TransactionID string `json:"tranId"`
	Status        string `json:"status"`
	AmountCents   int64  `json:"amountCents"`
	Currency      string `json:"currency"`
	Email         string `json:"email"`
}

// PaymentEventMsg mirrors the gateway's IPN payload as delivered on the
// payment-events Kafka topic. At-least-once; handlers must stay
// idempotent per transaction id.
type PaymentEventMsg struct {
	TranID string `json:"tran_id"`
	ValID  string `json:"val_id"`
	Status string `json:"status"`
}
