package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
)

// GatewayConfig is the slice of configuration the initiator must see
// present before it talks to the gateway at all.
type GatewayConfig struct {
	StoreID       string
	StorePassword string
	BaseURL       string // public storefront URL for callbacks
	Currency      string
	Timeout       time.Duration
}

type InitiatePayment struct {
	gw   PaymentGateway
	repo OrderRepo
	cfg  GatewayConfig
	log  *slog.Logger
}

func NewInitiatePayment(gw PaymentGateway, repo OrderRepo, cfg GatewayConfig) *InitiatePayment {
	if cfg.Currency == "" {
		cfg.Currency = "BDT"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &InitiatePayment{gw: gw, repo: repo, cfg: cfg, log: logging.New("initiate-payment")}
}

type InitiateOutput struct {
	TransactionID string
	RedirectURL   string
}

// Execute submits the payload to the gateway and, only once a session
// actually exists, persists the pending order and returns the redirect
// URL. On any other outcome nothing is persisted, so a resubmit is safe.
func (uc *InitiatePayment) Execute(ctx context.Context, p OrderPayload) (InitiateOutput, error) {
	if missing := uc.missingConfig(); len(missing) > 0 {
		// Detail stays in the server log; callers see a generic failure.
		uc.log.Error("gateway configuration incomplete", "missing", missing)
		return InitiateOutput{}, ErrConfiguration
	}
	if len(p.Items) == 0 || p.Customer == (domain.CustomerInfo{}) {
		return InitiateOutput{}, fmt.Errorf("%w: missing items or customer info", ErrInvalidOrder)
	}
	if p.TotalPriceCents <= 0 {
		return InitiateOutput{}, fmt.Errorf("%w: total must be positive", ErrInvalidOrder)
	}

	tranID := NewTransactionID()
	req := SessionRequest{
		AmountCents: p.TotalPriceCents,
		Currency:    uc.cfg.Currency,
		TranID:      tranID,
		SuccessURL:  uc.callbackURL("/order-confirmation", "success", tranID),
		FailURL:     uc.callbackURL("/order-confirmation", "fail", tranID),
		CancelURL:   uc.callbackURL("/cart", "cancel", tranID),
		IPNURL:      strings.TrimRight(uc.cfg.BaseURL, "/") + "/api/payments/ipn",
		ProductName: productNames(p.Items),
		Customer:    p.Customer,
	}

	gctx, cancel := context.WithTimeout(ctx, uc.cfg.Timeout)
	defer cancel()

	resp, err := uc.gw.CreateSession(gctx, req)
	if err != nil {
		uc.log.Error("gateway session creation failed", "tran_id", tranID, "err", err)
		return InitiateOutput{}, &GatewayError{Reason: "session creation failed"}
	}
	if resp.Status != "SUCCESS" || resp.RedirectURL == "" {
		reason := resp.FailedReason
		if reason == "" {
			reason = "gateway did not return a payment URL"
		}
		uc.log.Error("gateway refused session", "tran_id", tranID, "status", resp.Status, "reason", reason)
		return InitiateOutput{}, &GatewayError{Reason: reason}
	}

	order := &domain.Order{
		TransactionID: tranID,
		Status:        domain.StatusPending,
		Amount:        domain.Money{Cents: p.TotalPriceCents, Currency: uc.cfg.Currency},
		Items:         p.Items,
		Customer:      p.Customer,
	}
	if err := uc.repo.Create(ctx, order); err != nil {
		return InitiateOutput{}, fmt.Errorf("persist pending order: %w", err)
	}

	uc.log.Info("payment session created", "tran_id", tranID, "amount_cents", p.TotalPriceCents)
	return InitiateOutput{TransactionID: tranID, RedirectURL: resp.RedirectURL}, nil
}

func (uc *InitiatePayment) missingConfig() []string {
	var missing []string
	if uc.cfg.StoreID == "" {
		missing = append(missing, "gateway.store_id")
	}
	if uc.cfg.StorePassword == "" {
		missing = append(missing, "gateway.store_password")
	}
	if uc.cfg.BaseURL == "" {
		missing = append(missing, "gateway.base_url")
	}
	return missing
}

func (uc *InitiatePayment) callbackURL(path, status, tranID string) string {
	return fmt.Sprintf("%s%s?status=%s&tran_id=%s",
		strings.TrimRight(uc.cfg.BaseURL, "/"), path, status, url.QueryEscape(tranID))
}

func productNames(items []domain.LineItem) string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	joined := strings.Join(names, ", ")
	if joined == "" {
		joined = "E-commerce Product(s)"
	}
	return joined
}

// NewTransactionID builds a per-attempt id from a time component plus a
// random component, so ids never collide across attempts or restarts.
func NewTransactionID() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("txn_%d_%s", time.Now().UnixMilli(), random)
}
