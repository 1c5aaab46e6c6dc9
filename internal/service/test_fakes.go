package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/entity"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/repository"
	"github.com/Dhinesh-M-7/BlogApplicationBackend/internal/utils"
)

// FakeStore is a test-only in-memory store backing the user, refresh token
// and session repositories (exposed through the Users/Tokens/Sessions views).
// Error fields allow behavior injection; Rotate honors the same atomicity
// contract as the SQL implementation.
type FakeStore struct {
	mu         sync.Mutex
	users      map[int64]*entity.User
	nextUserID int64
	tokens     map[string]*entity.RefreshToken
	sessions   map[string]*entity.SessionRecord

	// Order of session writes, for save-before-link assertions.
	SessionOps []string

	CreateUserErr     error
	FindUserErr       error
	UpdatePasswordErr error
	MarkValidatedErr  error

	CreateTokenErr error
	DeleteTokenErr error
	RotateErr      error

	SaveSessionErr   error
	FindSessionErr   error
	TouchSessionErr  error
	LinkSessionErr   error
	DeleteSessionErr error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		users:    make(map[int64]*entity.User),
		tokens:   make(map[string]*entity.RefreshToken),
		sessions: make(map[string]*entity.SessionRecord),
	}
}

func (f *FakeStore) Users() repository.UserRepository {
	return fakeUserRepo{f}
}

func (f *FakeStore) Tokens() repository.RefreshTokenRepository {
	return fakeTokenRepo{f}
}

func (f *FakeStore) Sessions() repository.SessionRepository {
	return fakeSessionRepo{f}
}

// SeedUser inserts a user directly, bypassing error injection.
func (f *FakeStore) SeedUser(name, email, passwordHash string, validated bool) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextUserID++
	user := &entity.User{
		ID:          f.nextUserID,
		Name:        name,
		Email:       email,
		Password:    passwordHash,
		IsValidated: validated,
	}
	f.users[user.ID] = user
	return user
}

// SeedToken inserts a refresh token directly.
func (f *FakeStore) SeedToken(token string, userID int64, expire time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[token] = &entity.RefreshToken{Token: token, UserID: userID, Expire: expire}
}

// SeedSession inserts a session row directly.
func (f *FakeStore) SeedSession(sid string, userID int64, data []byte, expire time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[sid] = &entity.SessionRecord{SID: sid, UserID: &userID, Data: data, Expire: expire}
}

func (f *FakeStore) TokenExists(token string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.tokens[token]
	return ok
}

func (f *FakeStore) TokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

func (f *FakeStore) SessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

func (f *FakeStore) SessionRecord(sid string) *entity.SessionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if record, ok := f.sessions[sid]; ok {
		copied := *record
		return &copied
	}
	return nil
}

func (f *FakeStore) UserByID(id int64) *entity.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[id]; ok {
		copied := *user
		return &copied
	}
	return nil
}

type fakeUserRepo struct {
	f *FakeStore
}

func (r fakeUserRepo) Create(ctx context.Context, user *entity.User) (*entity.User, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateUserErr != nil {
		return nil, f.CreateUserErr
	}
	f.nextUserID++
	user.ID = f.nextUserID
	copied := *user
	f.users[user.ID] = &copied
	return user, nil
}

func (r fakeUserRepo) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FindUserErr != nil {
		return nil, f.FindUserErr
	}
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (r fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FindUserErr != nil {
		return nil, f.FindUserErr
	}
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (r fakeUserRepo) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdatePasswordErr != nil {
		return f.UpdatePasswordErr
	}
	if user, ok := f.users[userID]; ok {
		user.Password = hash
	}
	return nil
}

func (r fakeUserRepo) MarkValidated(ctx context.Context, email string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.MarkValidatedErr != nil {
		return f.MarkValidatedErr
	}
	for _, user := range f.users {
		if user.Email == email {
			user.IsValidated = true
		}
	}
	return nil
}

type fakeTokenRepo struct {
	f *FakeStore
}

func (r fakeTokenRepo) Create(ctx context.Context, token *entity.RefreshToken) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateTokenErr != nil {
		return f.CreateTokenErr
	}
	copied := *token
	f.tokens[token.Token] = &copied
	return nil
}

func (r fakeTokenRepo) Delete(ctx context.Context, token string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteTokenErr != nil {
		return f.DeleteTokenErr
	}
	delete(f.tokens, token)
	return nil
}

func (r fakeTokenRepo) DeleteByUser(ctx context.Context, userID int64) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	for value, token := range f.tokens {
		if token.UserID == userID {
			delete(f.tokens, value)
		}
	}
	return nil
}

func (r fakeTokenRepo) DeleteOtherByUser(ctx context.Context, userID int64, keepToken string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	for value, token := range f.tokens {
		if token.UserID == userID && value != keepToken {
			delete(f.tokens, value)
		}
	}
	return nil
}

func (r fakeTokenRepo) Rotate(ctx context.Context, presented string, next *entity.RefreshToken, now time.Time) (*entity.User, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RotateErr != nil {
		return nil, f.RotateErr
	}
	current, ok := f.tokens[presented]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	if now.After(current.Expire) {
		delete(f.tokens, presented)
		return nil, repository.ErrTokenExpired
	}
	user, ok := f.users[current.UserID]
	if !ok {
		// Rolled back: the presented row stays untouched.
		return nil, repository.ErrTokenNotFound
	}

	delete(f.tokens, presented)
	next.UserID = current.UserID
	copied := *next
	f.tokens[next.Token] = &copied

	userCopy := *user
	return &userCopy, nil
}

type fakeSessionRepo struct {
	f *FakeStore
}

func (r fakeSessionRepo) Save(ctx context.Context, record *entity.SessionRecord) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SessionOps = append(f.SessionOps, "save")
	if f.SaveSessionErr != nil {
		return f.SaveSessionErr
	}
	copied := *record
	f.sessions[record.SID] = &copied
	return nil
}

func (r fakeSessionRepo) Find(ctx context.Context, sid string) (*entity.SessionRecord, error) {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FindSessionErr != nil {
		return nil, f.FindSessionErr
	}
	record, ok := f.sessions[sid]
	if !ok {
		return nil, nil
	}
	copied := *record
	return &copied, nil
}

func (r fakeSessionRepo) Touch(ctx context.Context, sid string, expire time.Time) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TouchSessionErr != nil {
		return f.TouchSessionErr
	}
	if record, ok := f.sessions[sid]; ok {
		record.Expire = expire
	}
	return nil
}

func (r fakeSessionRepo) LinkUser(ctx context.Context, sid string, userID int64) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SessionOps = append(f.SessionOps, "link")
	if f.LinkSessionErr != nil {
		return f.LinkSessionErr
	}
	if record, ok := f.sessions[sid]; ok {
		record.UserID = &userID
	}
	return nil
}

func (r fakeSessionRepo) Delete(ctx context.Context, sid string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteSessionErr != nil {
		return f.DeleteSessionErr
	}
	delete(f.sessions, sid)
	return nil
}

func (r fakeSessionRepo) DeleteByUser(ctx context.Context, userID int64) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid, record := range f.sessions {
		if record.UserID != nil && *record.UserID == userID {
			delete(f.sessions, sid)
		}
	}
	return nil
}

func (r fakeSessionRepo) DeleteOtherByUser(ctx context.Context, userID int64, keepSID string) error {
	f := r.f
	f.mu.Lock()
	defer f.mu.Unlock()
	for sid, record := range f.sessions {
		if record.UserID != nil && *record.UserID == userID && sid != keepSID {
			delete(f.sessions, sid)
		}
	}
	return nil
}

// FakeMailer records outgoing mail on a channel so asynchronous sends can be
// awaited from tests.
type FakeMailer struct {
	Sent chan MailRecord
	Err  error
}

type MailRecord struct {
	Kind   string
	To     string
	Origin string
	Token  string
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{Sent: make(chan MailRecord, 8)}
}

func (f *FakeMailer) SendVerificationMail(ctx context.Context, to string, origin string, token string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Sent <- MailRecord{Kind: "verification", To: to, Origin: origin, Token: token}
	return nil
}

func (f *FakeMailer) SendForgotPasswordMail(ctx context.Context, to string, origin string, token string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Sent <- MailRecord{Kind: "forgot", To: to, Origin: origin, Token: token}
	return nil
}

// FakeHasher is a transparent stand-in for bcrypt.
type FakeHasher struct{}

func (FakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (FakeHasher) Verify(hash string, password string) bool {
	return hash == "hashed:"+password
}

// FakeMailTokens issues reversible tokens of the form "mail-token:<email>".
type FakeMailTokens struct{}

func (FakeMailTokens) Generate(email string) (string, error) {
	return "mail-token:" + email, nil
}

func (FakeMailTokens) Decode(token string) (string, error) {
	email, ok := strings.CutPrefix(token, "mail-token:")
	if !ok || email == "" {
		return "", utils.ErrInvalidToken
	}
	return email, nil
}

// FakeClock is a settable clock.
type FakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{t: t}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
