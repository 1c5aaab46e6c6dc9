package session

import (
	"context"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/entity"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Manager owns the server-side session lifecycle: loading by sid, binding an
// identity, the rolling expiration window and destruction.
type Manager struct {
	store  repository.SessionRepository
	log    *logrus.Logger
	maxAge time.Duration
	now    func() time.Time
}

func NewManager(store repository.SessionRepository, log *logrus.Logger, maxAge time.Duration) *Manager {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Manager{
		store:  store,
		log:    log,
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Load resolves the presented sid to a session. An unknown, unreadable or
// expired sid yields a fresh anonymous session under a new id; expired rows
// are purged on the way.
func (m *Manager) Load(ctx context.Context, sid string) *Session {
	if sid == "" {
		return m.newSession()
	}

	record, err := m.store.Find(ctx, sid)
	if err != nil {
		m.log.WithError(err).Warn("session lookup failed")
		return m.newSession()
	}
	if record == nil {
		return m.newSession()
	}
	if m.now().After(record.Expire) {
		if err := m.store.Delete(ctx, sid); err != nil {
			m.log.WithError(err).Warn("expired session cleanup failed")
		}
		return m.newSession()
	}

	identity, err := decodePayload(record.Data)
	if err != nil {
		m.log.WithError(err).Warn("session payload unreadable")
		return m.newSession()
	}

	return &Session{sid: sid, identity: identity, expire: record.Expire}
}

// Bind stores the identity on the session and saves it durably. The save must
// succeed before anything depending on the session may proceed; the secondary
// userid link is only attempted afterwards and its failure is tolerated (the
// row stays reachable by sid, only bulk lookup loses it).
func (m *Manager) Bind(ctx context.Context, s *Session, identity Identity) error {
	data, err := encodePayload(&identity)
	if err != nil {
		return err
	}

	expire := m.now().Add(m.maxAge)
	record := &entity.SessionRecord{
		SID:    s.sid,
		Data:   data,
		Expire: expire,
	}
	if err := m.store.Save(ctx, record); err != nil {
		return err
	}

	s.identity = &identity
	s.expire = expire

	if err := m.store.LinkUser(ctx, s.sid, identity.ID); err != nil {
		m.log.WithError(err).WithField("sid", s.sid).Warn("session user link failed")
	}
	return nil
}

// Touch pushes the session deadline forward by the full window. Called on
// every admitted request to get rolling semantics; a failed touch only costs
// the extension, so it is logged and swallowed.
func (m *Manager) Touch(ctx context.Context, s *Session) {
	expire := m.now().Add(m.maxAge)
	if err := m.store.Touch(ctx, s.sid, expire); err != nil {
		m.log.WithError(err).WithField("sid", s.sid).Warn("session touch failed")
		return
	}
	s.expire = expire
}

// Destroy invalidates the session. Best-effort: a failed delete is logged and
// the session is still detached so the response can clear its cookies.
func (m *Manager) Destroy(ctx context.Context, s *Session) {
	if err := m.store.Delete(ctx, s.sid); err != nil {
		m.log.WithError(err).WithField("sid", s.sid).Error("session destroy failed")
	}
	s.identity = nil
}

func (m *Manager) MaxAge() time.Duration {
	return m.maxAge
}

func (m *Manager) newSession() *Session {
	return &Session{sid: uuid.NewString()}
}
