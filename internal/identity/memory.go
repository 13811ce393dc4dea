package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jayedsikder/commerceflow-api/internal/logging"
)

// SessionConfig mirrors the session section of the service config.
type SessionConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
	TTL       time.Duration
}

// MemoryProvider is the in-process stand-in for the hosted identity
// service: an in-memory user registry issuing HS256 session tokens.
type MemoryProvider struct {
	cfg SessionConfig
	log *slog.Logger

	mu      sync.RWMutex
	users   map[string]memoryUser // keyed by email
	revoked map[string]time.Time  // token -> expiry, pruned lazily
}

type memoryUser struct {
	id           string
	email        string
	passwordHash [32]byte
}

func NewMemoryProvider(cfg SessionConfig) *MemoryProvider {
	if cfg.TTL <= 0 {
		cfg.TTL = 12 * time.Hour
	}
	return &MemoryProvider{
		cfg:     cfg,
		log:     logging.New("identity"),
		users:   map[string]memoryUser{},
		revoked: map[string]time.Time{},
	}
}

func (p *MemoryProvider) Register(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.users[email]; ok {
		return User{}, ErrEmailTaken
	}
	u := memoryUser{
		id:           "user_" + uuid.NewString(),
		email:        email,
		passwordHash: sha256.Sum256([]byte(password)),
	}
	p.users[email] = u
	return User{ID: u.id, Email: u.email}, nil
}

func (p *MemoryProvider) Login(ctx context.Context, email, password string) (Session, error) {
	p.mu.RLock()
	u, ok := p.users[email]
	p.mu.RUnlock()

	hash := sha256.Sum256([]byte(password))
	if !ok || subtle.ConstantTimeCompare(u.passwordHash[:], hash[:]) != 1 {
		return Session{}, ErrInvalidCredentials
	}

	now := time.Now()
	exp := now.Add(p.cfg.TTL)
	claims := jwt.MapClaims{
		"iss":   p.cfg.Issuer,
		"aud":   p.cfg.Audience,
		"iat":   now.Unix(),
		"nbf":   now.Unix(),
		"exp":   exp.Unix(),
		"sub":   u.id,
		"email": u.email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(p.cfg.JWTSecret))
	if err != nil {
		return Session{}, err
	}
	return Session{Token: signed, ExpiresAt: exp}, nil
}

func (p *MemoryProvider) Logout(ctx context.Context, token string) error {
	u, err := p.CurrentUser(ctx, token)
	if err != nil || u == nil {
		return nil // logging out an invalid session is a no-op
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[token] = time.Now().Add(p.cfg.TTL)
	for t, exp := range p.revoked {
		if time.Now().After(exp) {
			delete(p.revoked, t)
		}
	}
	return nil
}

func (p *MemoryProvider) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, nil
	}
	p.mu.RLock()
	_, revoked := p.revoked[token]
	p.mu.RUnlock()
	if revoked {
		return nil, nil
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(p.cfg.JWTSecret), nil
	}, jwt.WithLeeway(30*time.Second)) // small clock skew

	if err != nil || !parsed.Valid {
		return nil, nil
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, nil
	}
	if claims["iss"] != p.cfg.Issuer || claims["aud"] != p.cfg.Audience {
		return nil, nil
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" {
		return nil, nil
	}
	return &User{ID: sub, Email: email}, nil
}

func (p *MemoryProvider) SendPasswordReset(ctx context.Context, email string) error {
	// Mocked collaborator: the real provider emails a reset link. Always
	// succeeds so callers cannot probe which addresses exist.
	p.mu.RLock()
	_, known := p.users[email]
	p.mu.RUnlock()
	p.log.Info("password reset requested", "email", email, "known", known)
	return nil
}

var _ Provider = (*MemoryProvider)(nil)
