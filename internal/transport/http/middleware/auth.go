package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"leavemind/internal/transport/http/api"
)

type ctxKey string

const ctxKeyOrg ctxKey = "org"

type OrgContext struct {
	OrgID      string
	EmployeeID string
	Role       string
}

type Claims struct {
	OrgID      string `json:"orgId"`
	EmployeeID string `json:"employeeId"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// Auth resolves the calling organization. Requests carry either a bearer
// token signed with the shared secret, or, when no secret is configured
// (development), an X-Org-ID header.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				org := OrgContext{
					OrgID:      strings.TrimSpace(r.Header.Get("X-Org-ID")),
					EmployeeID: strings.TrimSpace(r.Header.Get("X-Employee-ID")),
				}
				if org.OrgID == "" {
					api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing X-Org-ID header", GetRequestID(r.Context()))
					return
				}
				next.ServeHTTP(w, r.WithContext(withOrg(r.Context(), org)))
				return
			}

			parts := strings.Split(r.Header.Get("Authorization"), " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", GetRequestID(r.Context()))
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid || claims.OrgID == "" {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid token", GetRequestID(r.Context()))
				return
			}

			org := OrgContext{OrgID: claims.OrgID, EmployeeID: claims.EmployeeID, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(withOrg(r.Context(), org)))
		})
	}
}

func withOrg(ctx context.Context, org OrgContext) context.Context {
	return context.WithValue(ctx, ctxKeyOrg, org)
}

func GetOrg(ctx context.Context) (OrgContext, bool) {
	org, ok := ctx.Value(ctxKeyOrg).(OrgContext)
	return org, ok
}
