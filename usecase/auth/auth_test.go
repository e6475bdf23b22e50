package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/usecase/auth"
)

// ---- fakes ----

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
	saved    int
	deleted  []string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*domain.Session{}}
}

func (f *fakeSessionRepo) Get(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Save(ctx context.Context, session *domain.Session) error {
	f.saved++
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	delete(f.sessions, id)
	return nil
}

type fakeUserRepo struct {
	byEmail map[string]*domain.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	f.byEmail[user.Email] = user
	return nil
}

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func validBearer(t *testing.T, sub, email, role string) string {
	now := time.Now()
	return signToken(t, testSecret, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
}

func liveSession(repo *fakeSessionRepo, id, userID string, role domain.Role) {
	repo.sessions[id] = &domain.Session{
		ID:        id,
		UserID:    userID,
		Email:     userID + "@example.com",
		Role:      role,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func newResolver(sessions *fakeSessionRepo) *auth.Resolver {
	return auth.NewResolver(nil,
		auth.NewSessionVerifier(sessions),
		auth.NewBearerVerifier(testSecret),
	)
}

// ---- resolver ----

func TestResolve_SessionWinsOverBearer(t *testing.T) {
	sessions := newFakeSessionRepo()
	liveSession(sessions, "sess-1", "user-a", domain.RoleUser)
	resolver := newResolver(sessions)

	p := resolver.Resolve(context.Background(), auth.Credentials{
		SessionID:   "sess-1",
		BearerToken: validBearer(t, "user-b", "b@example.com", "admin"),
	})
	if p == nil {
		t.Fatal("expected a principal")
	}
	if p.ID != "user-a" {
		t.Fatalf("session scheme must win, resolved %q", p.ID)
	}
}

func TestResolve_ExpiredSessionFallsThroughToBearer(t *testing.T) {
	sessions := newFakeSessionRepo()
	sessions.sessions["sess-old"] = &domain.Session{
		ID:        "sess-old",
		UserID:    "user-a",
		Role:      domain.RoleUser,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	resolver := newResolver(sessions)

	p := resolver.Resolve(context.Background(), auth.Credentials{
		SessionID:   "sess-old",
		BearerToken: validBearer(t, "user-b", "b@example.com", "user"),
	})
	if p == nil || p.ID != "user-b" {
		t.Fatalf("expected bearer principal user-b, got %+v", p)
	}
}

func TestResolve_NoCredentialsIsAnonymous(t *testing.T) {
	resolver := newResolver(newFakeSessionRepo())
	if p := resolver.Resolve(context.Background(), auth.Credentials{}); p != nil {
		t.Fatalf("expected anonymous, got %+v", p)
	}
}

func TestResolve_MalformedCredentialsAreAnonymous(t *testing.T) {
	resolver := newResolver(newFakeSessionRepo())
	tests := []struct {
		name  string
		creds auth.Credentials
	}{
		{"unknown session id", auth.Credentials{SessionID: "nope"}},
		{"garbage token", auth.Credentials{BearerToken: "not.a.jwt"}},
		{"wrong signature", auth.Credentials{BearerToken: signToken(t, "other-secret", jwt.MapClaims{
			"sub": "x", "exp": time.Now().Add(time.Hour).Unix(),
		})}},
		{"expired token", auth.Credentials{BearerToken: signToken(t, testSecret, jwt.MapClaims{
			"sub": "x", "exp": time.Now().Add(-time.Hour).Unix(),
		})}},
		{"missing subject", auth.Credentials{BearerToken: signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if p := resolver.Resolve(context.Background(), tt.creds); p != nil {
				t.Fatalf("expected anonymous, got %+v", p)
			}
		})
	}
}

func TestResolve_BearerWithUnknownRoleDefaultsToUser(t *testing.T) {
	resolver := newResolver(newFakeSessionRepo())
	p := resolver.Resolve(context.Background(), auth.Credentials{
		BearerToken: validBearer(t, "user-b", "b@example.com", "superhero"),
	})
	if p == nil || p.Role != domain.RoleUser {
		t.Fatalf("unknown role must resolve to user, got %+v", p)
	}
}

// ---- authorization gate ----

func TestRequireRole(t *testing.T) {
	adminPrincipal := &domain.Principal{ID: "a", Role: domain.RoleAdmin}
	userPrincipal := &domain.Principal{ID: "u", Role: domain.RoleUser}

	tests := []struct {
		name      string
		principal *domain.Principal
		required  domain.Role
		wantErr   error
	}{
		{"anonymous", nil, domain.RoleUser, domain.ErrUnauthenticated},
		{"user lacks admin", userPrincipal, domain.RoleAdmin, domain.ErrForbidden},
		{"user meets user", userPrincipal, domain.RoleUser, nil},
		{"admin meets user", adminPrincipal, domain.RoleUser, nil},
		{"admin meets admin", adminPrincipal, domain.RoleAdmin, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.RequireRole(tt.principal, tt.required)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// ---- login / logout ----

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func TestLogin_IssuesBothSchemes(t *testing.T) {
	users := &fakeUserRepo{byEmail: map[string]*domain.User{
		"a@example.com": {
			ID:           "user-a",
			Email:        "a@example.com",
			Role:         domain.RoleAdmin,
			Status:       "active",
			PasswordHash: hashOf(t, "s3cret"),
		},
	}}
	sessions := newFakeSessionRepo()
	svc := auth.NewService(users, sessions, testSecret, "roamio", time.Hour, time.Hour, nil)

	result, err := svc.Login(context.Background(), "a@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" || result.Session == nil {
		t.Fatalf("expected token and session, got %+v", result)
	}
	if sessions.saved != 1 {
		t.Fatalf("expected one stored session, got %d", sessions.saved)
	}

	// Both issued credentials must resolve to the same principal.
	resolver := newResolver(sessions)
	byCookie := resolver.Resolve(context.Background(), auth.Credentials{SessionID: result.Session.ID})
	byToken := resolver.Resolve(context.Background(), auth.Credentials{BearerToken: result.Token})
	if byCookie == nil || byToken == nil {
		t.Fatal("both credentials must resolve")
	}
	if byCookie.ID != "user-a" || byToken.ID != "user-a" {
		t.Fatalf("principal mismatch: cookie=%+v token=%+v", byCookie, byToken)
	}
	if byCookie.Role != domain.RoleAdmin || byToken.Role != domain.RoleAdmin {
		t.Fatalf("role lost in issuance: cookie=%v token=%v", byCookie.Role, byToken.Role)
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	users := &fakeUserRepo{byEmail: map[string]*domain.User{
		"a@example.com": {
			ID: "user-a", Email: "a@example.com", Status: "active",
			PasswordHash: hashOf(t, "s3cret"),
		},
		"frozen@example.com": {
			ID: "user-f", Email: "frozen@example.com", Status: "suspended",
			PasswordHash: hashOf(t, "s3cret"),
		},
	}}
	svc := auth.NewService(users, newFakeSessionRepo(), testSecret, "roamio", time.Hour, time.Hour, nil)

	cases := []struct {
		name, email, password string
	}{
		{"unknown email", "nobody@example.com", "s3cret"},
		{"wrong password", "a@example.com", "wrong"},
		{"inactive user", "frozen@example.com", "s3cret"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("got %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	sessions := newFakeSessionRepo()
	liveSession(sessions, "sess-1", "user-a", domain.RoleUser)
	svc := auth.NewService(&fakeUserRepo{}, sessions, testSecret, "roamio", time.Hour, time.Hour, nil)

	if err := svc.Logout(context.Background(), "sess-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	resolver := newResolver(sessions)
	if p := resolver.Resolve(context.Background(), auth.Credentials{SessionID: "sess-1"}); p != nil {
		t.Fatalf("revoked session must not resolve, got %+v", p)
	}

	// Logging out with no session is a no-op, not an error.
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("empty logout: %v", err)
	}
}
