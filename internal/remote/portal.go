package remote

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultDomain is the portal domain when none is configured.
const DefaultDomain = "tos.local"

// DefaultTokenTTL is the lifetime of an unconsumed portal token.
const DefaultTokenTTL = 15 * time.Minute

// CreatePortalURL returns the join URL for a sector.
func CreatePortalURL(domain string, sectorID int) string {
	if domain == "" {
		domain = DefaultDomain
	}
	return fmt.Sprintf("https://portal.%s/v1/join/%d", domain, sectorID)
}

type portalToken struct {
	sector    int
	expiresAt time.Time
}

// Tokens issues one-time portal tokens bound to a sector.
type Tokens struct {
	mu      sync.Mutex
	tokens  map[string]portalToken
	ttl     time.Duration
	nowFunc func() time.Time
	logger  *logrus.Entry
}

// NewTokens creates a token store. A non-positive ttl uses DefaultTokenTTL.
func NewTokens(ttl time.Duration, logger *logrus.Entry) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Tokens{
		tokens:  make(map[string]portalToken),
		ttl:     ttl,
		nowFunc: time.Now,
		logger:  logger,
	}
}

// Create issues a token for sector.
func (t *Tokens) Create(sector int) string {
	a, b := uuid.New(), uuid.New()
	token := fmt.Sprintf("%x-%x", a[:8], b[:8])

	t.mu.Lock()
	t.tokens[token] = portalToken{sector: sector, expiresAt: t.nowFunc().Add(t.ttl)}
	t.mu.Unlock()

	t.logger.WithField("sector", sector).Info("Portal token issued")
	return token
}

// Validate consumes token and returns its sector. Expired tokens are purged
// first, so an expired token never validates.
func (t *Tokens) Validate(token string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.nowFunc()
	for k, v := range t.tokens {
		if !v.expiresAt.After(now) {
			delete(t.tokens, k)
		}
	}

	pt, ok := t.tokens[token]
	if !ok {
		return 0, false
	}
	delete(t.tokens, token)
	t.logger.WithField("sector", pt.sector).Info("Portal handshake accepted")
	return pt.sector, true
}

// Revoke removes token and reports whether it was outstanding.
func (t *Tokens) Revoke(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	pt, ok := t.tokens[token]
	if !ok {
		return false
	}
	delete(t.tokens, token)
	t.logger.WithField("sector", pt.sector).Info("Portal token revoked")
	return true
}

// Len returns the number of outstanding tokens, expired ones included.
func (t *Tokens) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tokens)
}
