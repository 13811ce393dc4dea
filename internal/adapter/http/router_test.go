package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jayedsikder/commerceflow-api/internal/adapter/http/middleware"
	"github.com/jayedsikder/commerceflow-api/internal/cart"
	"github.com/jayedsikder/commerceflow-api/internal/catalog"
	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
	"github.com/jayedsikder/commerceflow-api/internal/identity"
	"github.com/jayedsikder/commerceflow-api/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
}

func newMemRepo() *memRepo { return &memRepo{orders: map[string]*domain.Order{}} }

func (r *memRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.TransactionID] = &cp
	return nil
}

func (r *memRepo) GetByTransactionID(_ context.Context, tranID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[tranID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memRepo) UpdateStatusIfNotTerminal(_ context.Context, tranID string, to domain.Status, _ string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[tranID]
	if !ok || o.Status.Terminal() {
		return false, nil
	}
	o.Status = to
	return true, nil
}

type fakeGW struct {
	sessionResp usecase.SessionResponse
	sessionErr  error
	validate    usecase.ValidationResult
	validateErr error
}

func (g *fakeGW) CreateSession(context.Context, usecase.SessionRequest) (usecase.SessionResponse, error) {
	return g.sessionResp, g.sessionErr
}

func (g *fakeGW) Validate(context.Context, string) (usecase.ValidationResult, error) {
	return g.validate, g.validateErr
}

type memIdem struct {
	mu     sync.Mutex
	locks  map[string]bool
	values map[string]string
}

func newMemIdem() *memIdem {
	return &memIdem{locks: map[string]bool{}, values: map[string]string{}}
}

func (m *memIdem) TryLock(_ context.Context, scope, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := scope + ":" + key
	if m.locks[k] {
		return false, nil
	}
	m.locks[k] = true
	return true, nil
}

func (m *memIdem) Unlock(ctx context.Context, scope, key string) error {
	// Like the real client, a dead context fails the call and the lock
	// stays until its TTL runs out.
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, scope+":"+key)
	return nil
}

func (m *memIdem) Remember(_ context.Context, scope, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[scope+":"+key] = value
	return nil
}

func (m *memIdem) Recall(_ context.Context, scope, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[scope+":"+key]
	return v, ok, nil
}

type memSnapshots struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemSnapshots() *memSnapshots { return &memSnapshots{m: map[string][]byte{}} }

func (s *memSnapshots) Load(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m[id], nil
}

func (s *memSnapshots) Save(_ context.Context, id string, b []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = b
	return nil
}

func (s *memSnapshots) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

type fixture struct {
	router *gin.Engine
	repo   *memRepo
	gw     *fakeGW
	idem   *memIdem
	carts  *cart.Service
	ident  *identity.MemoryProvider
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repo := newMemRepo()
	gw := &fakeGW{sessionResp: usecase.SessionResponse{Status: "SUCCESS", RedirectURL: "https://pay.example.com/s/1"}}
	idem := newMemIdem()
	carts := cart.NewService(newMemSnapshots())
	products := catalog.NewStaticSource()
	provider := identity.NewMemoryProvider(identity.SessionConfig{
		JWTSecret: "test-secret",
		Issuer:    "commerceflow",
		Audience:  "storefront",
		TTL:       time.Hour,
	})

	reconcile := usecase.NewReconcileOrder(repo, nil, nil)
	initiate := usecase.NewInitiatePayment(gw, repo, usecase.GatewayConfig{
		StoreID:       "teststore",
		StorePassword: "testpass",
		BaseURL:       "https://shop.example.com",
		Currency:      "BDT",
		Timeout:       time.Second,
	})
	process := usecase.NewProcessNotification(gw, reconcile, idem)

	session := middleware.NewSession(provider)
	router := NewRouter(Handlers{
		Auth:         NewAuthHandler(provider),
		Catalog:      NewCatalogHandler(products),
		Cart:         NewCartHandler(carts, products),
		Checkout:     NewCheckoutHandler(carts, initiate, idem),
		Notification: NewNotificationHandler(process),
		Order:        NewOrderHandler(repo, noStatusCache{}, carts),
	}, session)

	return &fixture{router: router, repo: repo, gw: gw, idem: idem, carts: carts, ident: provider}
}

type noStatusCache struct{}

func (noStatusCache) SetStatus(context.Context, string, string) error { return nil }
func (noStatusCache) GetStatus(context.Context, string) (string, bool, error) {
	return "", false, nil
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) login(t *testing.T, email string) string {
	t.Helper()
	_, err := f.ident.Register(context.Background(), email, "passw0rd")
	require.NoError(t, err)
	sess, err := f.ident.Login(context.Background(), email, "passw0rd")
	require.NoError(t, err)
	return sess.Token
}

func goodCustomer() map[string]any {
	return map[string]any{
		"fullName":   "Ayesha Rahman",
		"email":      "ayesha@example.com",
		"phone":      "+8801712345678",
		"address":    "12 Gulshan Avenue",
		"city":       "Dhaka",
		"postalCode": "1212",
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/products", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/products/prod_ebook_go", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/products/prod_missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/categories", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCart_RequiresSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCart_AddAndRead(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")

	w := f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items           []domain.LineItem `json:"items"`
		TotalItems      int               `json:"totalItems"`
		TotalPriceCents int64             `json:"totalPriceCents"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.TotalItems)
	// unit price comes from the catalog, not the request
	assert.Equal(t, int64(2*49900), resp.TotalPriceCents)

	w = f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckout_RequiresSession(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/checkout", "", map[string]any{"customerInfo": goodCustomer()})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCheckout_HappyPath(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")

	w := f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go", "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/checkout", token, map[string]any{"customerInfo": goodCustomer()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		TranID      string `json:"tranId"`
		RedirectURL string `json:"redirectUrl"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.TranID, "txn_"))
	assert.Equal(t, "https://pay.example.com/s/1", resp.RedirectURL)

	o, err := f.repo.GetByTransactionID(context.Background(), resp.TranID)
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, domain.StatusPending, o.Status)
}

func TestCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")

	w := f.do(t, http.MethodPost, "/checkout", token, map[string]any{"customerInfo": goodCustomer()})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cart")
}

func TestCheckout_BadCustomerField(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")
	f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go"})

	bad := goodCustomer()
	bad["postalCode"] = "123"
	w := f.do(t, http.MethodPost, "/checkout", token, map[string]any{"customerInfo": bad})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "postalCode")
}

func TestCheckout_InFlightGuard(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")
	f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go"})

	w := f.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me identity.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))

	locked, err := f.idem.TryLock(context.Background(), "checkout", me.ID)
	require.NoError(t, err)
	require.True(t, locked)

	w = f.do(t, http.MethodPost, "/checkout", token, map[string]any{"customerInfo": goodCustomer()})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCheckout_ClientGoneStillReleasesLock(t *testing.T) {
	// The buyer disconnects mid-checkout, so the request context is
	// already dead when the deferred release runs. The lock must still
	// come free, or the user is blocked from checking out again until
	// the TTL expires.
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")
	f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go"})

	body, err := json.Marshal(map[string]any{"customerInfo": goodCustomer()})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/checkout", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	f.router.ServeHTTP(httptest.NewRecorder(), req.WithContext(ctx))

	w := f.do(t, http.MethodPost, "/checkout", token, map[string]any{"customerInfo": goodCustomer()})
	assert.Equal(t, http.StatusOK, w.Code, "a later checkout must not hit a stale lock")
}

func TestCheckout_GatewayDown(t *testing.T) {
	f := newFixture(t)
	f.gw.sessionResp = usecase.SessionResponse{Status: "FAILED", FailedReason: "store deactivated"}
	token := f.login(t, "buyer@example.com")
	f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go"})

	w := f.do(t, http.MethodPost, "/checkout", token, map[string]any{"customerInfo": goodCustomer()})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, f.repo.orders)
}

func TestIPN_JSONAndForm(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")
	f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go"})
	w := f.do(t, http.MethodPost, "/checkout", token, map[string]any{"customerInfo": goodCustomer()})
	require.Equal(t, http.StatusOK, w.Code)
	var co struct {
		TranID string `json:"tranId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &co))

	f.gw.validate = usecase.ValidationResult{
		TransactionID: co.TranID,
		ValidationID:  "val_1",
		Status:        "VALID",
		AmountCents:   49900,
		Currency:      "BDT",
	}

	// the gateway posts form-encoded
	form := "tran_id=" + co.TranID + "&val_id=val_1&status=VALID"
	req := httptest.NewRequest(http.MethodPost, "/api/payments/ipn", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	o, err := f.repo.GetByTransactionID(context.Background(), co.TranID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusValid, o.Status)

	// a JSON redelivery short-circuits and still acks
	w = f.do(t, http.MethodPost, "/api/payments/ipn", "",
		map[string]any{"tran_id": co.TranID, "val_id": "val_1", "status": "VALID"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIPN_Malformed(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/payments/ipn", "", map[string]any{"tran_id": "txn_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIPN_ValidatorUnreachable(t *testing.T) {
	f := newFixture(t)
	f.gw.validateErr = context.DeadlineExceeded

	w := f.do(t, http.MethodPost, "/api/payments/ipn", "",
		map[string]any{"tran_id": "txn_1", "val_id": "val_1", "status": "VALID"})
	// 5xx so the gateway redelivers
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIPN_TransactionMismatch(t *testing.T) {
	f := newFixture(t)
	f.gw.validate = usecase.ValidationResult{TransactionID: "txn_other", Status: "VALID"}

	w := f.do(t, http.MethodPost, "/api/payments/ipn", "",
		map[string]any{"tran_id": "txn_1", "val_id": "val_1", "status": "VALID"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOrderStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.Create(context.Background(), &domain.Order{
		TransactionID: "txn_1",
		Status:        domain.StatusValid,
		Amount:        domain.Money{Cents: 3998, Currency: "BDT"},
	}))

	w := f.do(t, http.MethodGet, "/orders/txn_1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid"`)

	w = f.do(t, http.MethodGet, "/orders/txn_ghost", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConfirmation_SuccessClearsCart(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")
	f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go"})

	w := f.do(t, http.MethodGet, "/order-confirmation?status=success&tran_id=txn_1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success"`)

	w = f.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalItems":0`)
}

func TestConfirmation_CancelKeepsCart(t *testing.T) {
	f := newFixture(t)
	token := f.login(t, "buyer@example.com")
	f.do(t, http.MethodPost, "/cart/items", token, map[string]any{"productId": "prod_ebook_go"})

	w := f.do(t, http.MethodGet, "/order-confirmation?status=cancel&tran_id=txn_1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"totalItems":1`)
}

func TestConfirmation_AnonymousRedirect(t *testing.T) {
	f := newFixture(t)
	// the gateway redirect may arrive without an Authorization header
	w := f.do(t, http.MethodGet, "/order-confirmation?status=fail&tran_id=txn_1", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": "a@example.com", "password": "passw0rd"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": "a@example.com", "password": "other0ne"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/auth/login", "", map[string]any{"email": "a@example.com", "password": "passw0rd"})
	require.Equal(t, http.StatusOK, w.Code)
	var sess identity.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))

	w = f.do(t, http.MethodGet, "/auth/me", sess.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodPost, "/auth/logout", sess.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/auth/me", sess.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// password reset never reveals whether the account exists
	w = f.do(t, http.MethodPost, "/auth/password-reset", "", map[string]any{"email": "ghost@example.com"})
	assert.Equal(t, http.StatusAccepted, w.Code)
}
