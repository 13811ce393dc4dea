package usecase

import (
	"context"
	"errors"
	"sync"

	domain "github.com/jayedsikder/commerceflow-api/internal/entity"
)

type memOrderRepo struct {
	mu      sync.Mutex
	orders  map[string]*domain.Order
	notes   map[string]string
	failGet error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[string]*domain.Order{}, notes: map[string]string{}}
}

func (r *memOrderRepo) Create(_ context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.TransactionID] = &cp
	return nil
}

func (r *memOrderRepo) GetByTransactionID(_ context.Context, tranID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failGet != nil {
		return nil, r.failGet
	}
	o, ok := r.orders[tranID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memOrderRepo) UpdateStatusIfNotTerminal(_ context.Context, tranID string, to domain.Status, note string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[tranID]
	if !ok || o.Status.Terminal() {
		return false, nil
	}
	o.Status = to
	if note != "" {
		r.notes[tranID] = note
	}
	return true, nil
}

type fakeGateway struct {
	sessionResp SessionResponse
	sessionErr  error
	sessionReqs []SessionRequest

	validateResult ValidationResult
	validateErr    error
	validateCalls  int
}

func (g *fakeGateway) CreateSession(_ context.Context, req SessionRequest) (SessionResponse, error) {
	g.sessionReqs = append(g.sessionReqs, req)
	if g.sessionErr != nil {
		return SessionResponse{}, g.sessionErr
	}
	return g.sessionResp, nil
}

func (g *fakeGateway) Validate(_ context.Context, _ string) (ValidationResult, error) {
	g.validateCalls++
	if g.validateErr != nil {
		return ValidationResult{}, g.validateErr
	}
	return g.validateResult, nil
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

func (m *memIdem) Unlock(_ context.Context, scope, key string) error {
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

type capturePublisher struct {
	mu   sync.Mutex
	msgs []OrderSettledMsg
	err  error
}

func (p *capturePublisher) PublishSettled(_ context.Context, msg OrderSettledMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

type memStatusCache struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStatusCache() *memStatusCache { return &memStatusCache{m: map[string]string{}} }

func (c *memStatusCache) SetStatus(_ context.Context, tranID, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[tranID] = status
	return nil
}

func (c *memStatusCache) GetStatus(_ context.Context, tranID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.m[tranID]
	return v, ok, nil
}

// outageIdem simulates a dedupe store that cannot be reached. Recall
// reports ok alongside the error on purpose: callers must key off the
// error, never the flag.
type outageIdem struct{ recallCalls int }

func (m *outageIdem) TryLock(_ context.Context, _, _ string) (bool, error) { return true, nil }
func (m *outageIdem) Unlock(_ context.Context, _, _ string) error          { return nil }
func (m *outageIdem) Remember(_ context.Context, _, _, _ string) error     { return errBoom }

func (m *outageIdem) Recall(_ context.Context, _, _ string) (string, bool, error) {
	m.recallCalls++
	return "", true, errBoom
}

var errBoom = errors.New("boom")
