package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nikolayk812/storefront/internal/domain"
)

var errUnauthenticated = errors.New("missing or invalid bearer token")

// Claims are the bearer token claims; the subject is the user id.
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens issued by the identity service.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Parse(token string) (domain.Principal, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("jwt.ParseWithClaims: %w", err)
	}

	if claims.Subject == "" {
		return domain.Principal{}, errors.New("token has no subject")
	}

	return domain.Principal{UserID: claims.Subject, Admin: claims.Admin}, nil
}

// Issue signs a token for the user. It is used by tests and local tooling.
func (a *Authenticator) Issue(userID string, admin bool, ttl time.Duration) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("token.SignedString: %w", err)
	}

	return signed, nil
}

// Middleware puts the caller's principal into the request context.
// Requests without an Authorization header continue as anonymous.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			respondError(w, http.StatusUnauthorized, "unauthorized", errUnauthenticated.Error())
			return
		}

		principal, err := a.Parse(strings.TrimSpace(token))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", errUnauthenticated.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(domain.WithPrincipal(r.Context(), principal)))
	})
}

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !domain.PrincipalFrom(r.Context()).Authenticated() {
			respondError(w, http.StatusUnauthorized, "unauthorized", errUnauthenticated.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
