// Package sessions maps opaque bearer tokens to the usernames that logged
// in with them. Sessions live only in process memory and never expire.
package sessions

import (
	"sync"

	"github.com/dmitrijs2005/gophmail/internal/common"
)

// TokenLength is the length of an issued token in hex characters.
const TokenLength = common.SessionTokenBytes * 2

// Table is safe for concurrent use.
type Table struct {
	mu       sync.RWMutex
	sessions map[string]string
	newToken func() (string, error)
}

func NewTable() *Table {
	return &Table{
		sessions: make(map[string]string),
		newToken: func() (string, error) { return common.MakeRandHexString(common.SessionTokenBytes) },
	}
}

// Issue creates a new session for username. A user may hold any number of
// sessions at once.
func (t *Table) Issue(username string) (string, error) {
	for {
		token, err := t.newToken()
		if err != nil {
			return "", err
		}

		t.mu.Lock()
		if _, taken := t.sessions[token]; !taken {
			t.sessions[token] = username
			t.mu.Unlock()
			return token, nil
		}
		t.mu.Unlock()
	}
}

// Lookup returns the username bound to token.
func (t *Table) Lookup(token string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	username, ok := t.sessions[token]
	return username, ok
}

// Revoke removes token and reports whether it was bound.
func (t *Table) Revoke(token string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[token]; !ok {
		return false
	}
	delete(t.sessions, token)
	return true
}

// Len returns the number of live sessions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// WellFormed reports whether token has the shape of an issued token.
func WellFormed(token string) bool {
	return len(token) == TokenLength && common.IsHex(token)
}
