package remote

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCreatePortalURL(t *testing.T) {
	assert.Equal(t, "https://portal.tos.local/v1/join/2", CreatePortalURL("", 2))
	assert.Equal(t, "https://portal.fleet.example/v1/join/0", CreatePortalURL("fleet.example", 0))
}

func TestTokensAreOneTime(t *testing.T) {
	tokens := NewTokens(0, nil)
	token := tokens.Create(3)
	assert.Regexp(t, `^[0-9a-f]{16}-[0-9a-f]{16}$`, token)

	sector, ok := tokens.Validate(token)
	assert.True(t, ok)
	assert.Equal(t, 3, sector)

	_, ok = tokens.Validate(token)
	assert.False(t, ok)
}

func TestTokensExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens := NewTokens(time.Minute, nil)
	tokens.nowFunc = func() time.Time { return now }

	stale := tokens.Create(1)
	now = now.Add(30 * time.Second)
	fresh := tokens.Create(2)
	now = now.Add(45 * time.Second)

	_, ok := tokens.Validate(stale)
	assert.False(t, ok)
	assert.Equal(t, 1, tokens.Len())

	sector, ok := tokens.Validate(fresh)
	assert.True(t, ok)
	assert.Equal(t, 2, sector)
}

func TestTokensRevoke(t *testing.T) {
	tokens := NewTokens(time.Minute, nil)
	token := tokens.Create(0)
	assert.True(t, tokens.Revoke(token))
	assert.False(t, tokens.Revoke("unknown"))

	_, ok := tokens.Validate(token)
	assert.False(t, ok)
	assert.Zero(t, tokens.Len())
}
