package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/roamio/backend/api/transport"
	"github.com/roamio/backend/domain"
	"github.com/roamio/backend/usecase/auth"
)

const principalKey = "principal"

// ResolvePrincipal runs the credential chain on every request and stashes
// the result (possibly nil = anonymous) on the request context. It never
// rejects; gating happens in RequireRole.
func ResolvePrincipal(resolver *auth.Resolver, cookieName string) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			creds := auth.Credentials{
				SessionID:   string(ctx.Request.Header.Cookie(cookieName)),
				BearerToken: extractBearer(ctx),
			}
			principal := resolver.Resolve(context.Background(), creds)
			if principal != nil {
				ctx.SetUserValue(principalKey, principal)
			}
			next(ctx)
		}
	}
}

// RequireRole rejects the request before the handler runs unless the
// resolved principal meets the required role. Failing here guarantees the
// guarded operation performed zero side effects.
func RequireRole(required domain.Role) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if err := auth.RequireRole(PrincipalFrom(ctx), required); err != nil {
				status := http.StatusForbidden
				code := domain.ErrCodeForbidden
				if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					status = http.StatusUnauthorized
					code = domain.ErrCodeUnauthorized
				}
				respond(ctx, status, transport.NewError(string(code), err.Error(), nil))
				return
			}
			next(ctx)
		}
	}
}

// PrincipalFrom returns the resolved principal, or nil for anonymous callers.
func PrincipalFrom(ctx *fasthttp.RequestCtx) *domain.Principal {
	principal, _ := ctx.UserValue(principalKey).(*domain.Principal)
	return principal
}

func extractBearer(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

func respond(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}
