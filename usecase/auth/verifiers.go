package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/repository"
)

// SessionVerifier resolves first-party cookie sessions (scheme A).
type SessionVerifier struct {
	sessions repository.SessionRepository
}

func NewSessionVerifier(sessions repository.SessionRepository) *SessionVerifier {
	return &SessionVerifier{sessions: sessions}
}

func (v *SessionVerifier) Name() string { return "session" }

func (v *SessionVerifier) Verify(ctx context.Context, creds Credentials) (*domain.Principal, error) {
	if creds.SessionID == "" {
		return nil, nil
	}
	session, err := v.sessions.Get(ctx, creds.SessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		return nil, domain.ErrSessionNotFound
	}
	return &domain.Principal{
		ID:    session.UserID,
		Email: session.Email,
		Role:  session.Role,
	}, nil
}

// BearerVerifier resolves HS256 bearer tokens issued by the login endpoint
// (scheme B). Signature and expiry are checked; nothing is looked up.
type BearerVerifier struct {
	secret []byte
}

func NewBearerVerifier(secret string) *BearerVerifier {
	return &BearerVerifier{secret: []byte(secret)}
}

func (v *BearerVerifier) Name() string { return "bearer" }

func (v *BearerVerifier) Verify(ctx context.Context, creds Credentials) (*domain.Principal, error) {
	if creds.BearerToken == "" {
		return nil, nil
	}

	token, err := jwt.Parse(creds.BearerToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, domain.ErrInvalidCredentials
	}
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)

	return &domain.Principal{
		ID:    sub,
		Email: email,
		Role:  domain.ParseRole(role),
	}, nil
}
