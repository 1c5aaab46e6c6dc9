package session

import (
	"encoding/json"
	"time"
)

// Identity is the authenticated snapshot stored on a session. It is populated
// once per request and never mutated afterwards.
type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session is the per-request session value. It is either anonymous or carries
// a bound identity; the distinction is the identity pointer, checked at the
// boundary instead of casting an untyped payload.
type Session struct {
	sid      string
	identity *Identity
	expire   time.Time
}

func (s *Session) SID() string {
	return s.sid
}

// CurrentIdentity reports the bound identity. Absence means the caller is not
// authenticated.
func (s *Session) CurrentIdentity() (Identity, bool) {
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

func (s *Session) Expire() time.Time {
	return s.expire
}

type payload struct {
	User *Identity `json:"user,omitempty"`
}

func encodePayload(identity *Identity) ([]byte, error) {
	return json.Marshal(payload{User: identity})
}

func decodePayload(data []byte) (*Identity, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return p.User, nil
}
