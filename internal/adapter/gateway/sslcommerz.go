package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/logging"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

const (
	sessionPath    = "/gwprocess/v4/api.php"
	validationPath = "/validator/api/validationserverAPI.php"
)

// Client talks to the SSLCommerz-style hosted gateway: session creation
// for the buyer redirect and the authoritative validation endpoint.
type Client struct {
	storeID       string
	storePassword string
	apiBase       string
	hc            *http.Client
	log           *slog.Logger
}

func NewClient(storeID, storePassword, apiBase string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		storeID:       storeID,
		storePassword: storePassword,
		apiBase:       strings.TrimRight(apiBase, "/"),
		hc:            &http.Client{Timeout: timeout},
		log:           logging.New("gateway"),
	}
}

type sessionAPIResponse struct {
	Status         string `json:"status"`
	FailedReason   string `json:"failedreason"`
	GatewayPageURL string `json:"GatewayPageURL"`
}

// CreateSession posts the order fields to the gateway and returns its
// verdict verbatim; the caller decides what counts as success.
func (c *Client) CreateSession(ctx context.Context, req usecase.SessionRequest) (usecase.SessionResponse, error) {
	form := url.Values{}
	form.Set("store_id", c.storeID)
	form.Set("store_passwd", c.storePassword)
	form.Set("total_amount", domain.FormatCents(req.AmountCents))
	form.Set("currency", req.Currency)
	form.Set("tran_id", req.TranID)
	form.Set("success_url", req.SuccessURL)
	form.Set("fail_url", req.FailURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("ipn_url", req.IPNURL)
	form.Set("shipping_method", "NO")
	form.Set("product_name", req.ProductName)
	form.Set("product_category", "Digital Goods")
	form.Set("product_profile", "general")
	form.Set("cus_name", req.Customer.FullName)
	form.Set("cus_email", req.Customer.Email)
	form.Set("cus_add1", req.Customer.Address)
	form.Set("cus_city", req.Customer.City)
	form.Set("cus_postcode", req.Customer.PostalCode)
	form.Set("cus_country", "Bangladesh")
	form.Set("cus_phone", req.Customer.Phone)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+sessionPath, strings.NewReader(form.Encode()))
	if err != nil {
		return usecase.SessionResponse{}, fmt.Errorf("build session request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return usecase.SessionResponse{}, fmt.Errorf("gateway session call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return usecase.SessionResponse{}, fmt.Errorf("read session response: %w", err)
	}

	var api sessionAPIResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return usecase.SessionResponse{}, fmt.Errorf("decode session response: %w", err)
	}

	c.log.Info("session response", "tran_id", req.TranID, "status", api.Status)
	return usecase.SessionResponse{
		Status:       api.Status,
		RedirectURL:  api.GatewayPageURL,
		FailedReason: api.FailedReason,
	}, nil
}

type validationAPIResponse struct {
	APIConnect  string `json:"APIConnect"`
	Status      string `json:"status"`
	TranID      string `json:"tran_id"`
	ValID       string `json:"val_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	StoreAmount string `json:"store_amount"`
	BankTranID  string `json:"bank_tran_id"`
}

// Validate corroborates a notification with the gateway's validation
// endpoint using the service's own merchant credentials. An APIConnect
// value other than DONE is a connection failure, not a payment outcome.
func (c *Client) Validate(ctx context.Context, validationID string) (usecase.ValidationResult, error) {
	q := url.Values{}
	q.Set("val_id", validationID)
	q.Set("store_id", c.storeID)
	q.Set("store_passwd", c.storePassword)
	q.Set("format", "json")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+validationPath+"?"+q.Encode(), nil)
	if err != nil {
		return usecase.ValidationResult{}, fmt.Errorf("build validation request: %w", err)
	}

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return usecase.ValidationResult{}, fmt.Errorf("validation call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return usecase.ValidationResult{}, fmt.Errorf("read validation response: %w", err)
	}

	var api validationAPIResponse
	if err := json.Unmarshal(body, &api); err != nil {
		return usecase.ValidationResult{}, fmt.Errorf("decode validation response: %w", err)
	}
	if api.APIConnect != "DONE" {
		return usecase.ValidationResult{}, fmt.Errorf("validation APIConnect=%s", api.APIConnect)
	}

	amountCents, err := domain.ParseCents(api.Amount)
	if err != nil {
		return usecase.ValidationResult{}, fmt.Errorf("validated amount: %w", err)
	}
	storeCents := int64(0)
	if api.StoreAmount != "" {
		if storeCents, err = domain.ParseCents(api.StoreAmount); err != nil {
			return usecase.ValidationResult{}, fmt.Errorf("validated store amount: %w", err)
		}
	}

	return usecase.ValidationResult{
		TransactionID:     api.TranID,
		ValidationID:      api.ValID,
		Status:            api.Status,
		AmountCents:       amountCents,
		Currency:          api.Currency,
		StoreAmountCents:  storeCents,
		BankTransactionID: api.BankTranID,
	}, nil
}

var _ usecase.PaymentGateway = (*Client)(nil)
