package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
)

// Credentials carries the raw material extracted from a request before any
// verification happens. Either field may be empty.
type Credentials struct {
	SessionID   string
	BearerToken string
}

// Verifier turns one credential scheme into a principal. Implementations
// are side-effect free: a failed verification returns an error and changes
// nothing.
type Verifier interface {
	Name() string
	Verify(ctx context.Context, creds Credentials) (*domain.Principal, error)
}

// Resolver runs an ordered verifier chain; the first success wins and every
// failure is swallowed. A nil principal means the caller is anonymous.
type Resolver struct {
	verifiers []Verifier
	logger    *zap.Logger
}

func NewResolver(logger *zap.Logger, verifiers ...Verifier) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{verifiers: verifiers, logger: logger}
}

// Resolve never fails past this boundary. Expired and malformed credentials
// are logged and treated identically to absent ones.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) *domain.Principal {
	for _, v := range r.verifiers {
		principal, err := v.Verify(ctx, creds)
		if err != nil {
			r.logger.Debug("credential verification failed",
				zap.String("scheme", v.Name()), zap.Error(err))
			continue
		}
		if principal != nil {
			return principal
		}
	}
	return nil
}

// RequireRole is the authorization gate applied before any admin-only side
// effect. It is pure: failing it guarantees nothing has been written.
func RequireRole(principal *domain.Principal, required domain.Role) error {
	if principal == nil {
		return domain.ErrUnauthenticated
	}
	if !principal.Role.Meets(required) {
		return domain.ErrForbidden
	}
	return nil
}

// Service issues and revokes the credentials the verifiers above consume.
type Service struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	jwtSecret  []byte
	jwtIssuer  string
	sessionTTL time.Duration
	tokenTTL   time.Duration
	logger     *zap.Logger
}

func NewService(users repository.UserRepository, sessions repository.SessionRepository, secret, issuer string, sessionTTL, tokenTTL time.Duration, logger *zap.Logger) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		jwtSecret:  []byte(secret),
		jwtIssuer:  issuer,
		sessionTTL: sessionTTL,
		tokenTTL:   tokenTTL,
		logger:     logger,
	}
}

// LoginResult bundles both credential schemes issued on a successful login.
type LoginResult struct {
	Token     string          `json:"token"`
	Session   *domain.Session `json:"session"`
	Principal domain.Principal `json:"principal"`
}

// Login verifies the password and issues a bearer token plus a cookie
// session. Lookup and hash failures collapse into one error so callers
// cannot distinguish unknown emails from wrong passwords.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := s.issueToken(user, now)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:   token,
		Session: session,
		Principal: domain.Principal{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}

// Logout revokes a cookie session. Bearer tokens simply expire.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

func (s *Service) issueToken(user *domain.User, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"role":  string(user.Role),
		"iss":   s.jwtIssuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
