package service

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/complitracker/complitracker-go/internal/core/domain"
)

// TokenValidator reads session tokens without verifying their signature.
// It only short-circuits tokens that are obviously unusable; the backend
// stays the authority on validity.
type TokenValidator struct {
	leeway time.Duration
	parser *jwt.Parser
}

// NewTokenValidator creates a validator. A token counts as expired once
// now >= exp + leeway.
func NewTokenValidator(leeway time.Duration) *TokenValidator {
	return &TokenValidator{
		leeway: leeway,
		parser: jwt.NewParser(),
	}
}

// Decode extracts the claims of a three-segment JWT carrying a numeric exp.
// Anything else fails with ErrTokenMalformed.
func (v *TokenValidator) Decode(token string) (*domain.Claims, error) {
	if strings.Count(token, ".") != 2 {
		return nil, domain.ErrTokenMalformed.WithDetails("not a three-part token")
	}

	mc := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(token, mc); err != nil {
		return nil, domain.ErrTokenMalformed.WithCause(err)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, domain.ErrTokenMalformed.WithCause(err)
	}
	if exp == nil {
		return nil, domain.ErrTokenMalformed.WithDetails("missing exp claim")
	}

	claims := &domain.Claims{ExpiresAt: exp.Time}
	claims.Subject, _ = mc.GetSubject()
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if email, ok := mc["email"].(string); ok {
		claims.Email = email
	}
	claims.Roles = rolesClaim(mc)

	return claims, nil
}

// IsExpired reports whether claims are expired at now.
func (v *TokenValidator) IsExpired(claims *domain.Claims, now time.Time) bool {
	return claims.ExpiredAt(now, v.leeway)
}

// Check decodes token and reports ErrTokenExpired when it is past expiry.
func (v *TokenValidator) Check(token string, now time.Time) (*domain.Claims, error) {
	claims, err := v.Decode(token)
	if err != nil {
		return nil, err
	}
	if v.IsExpired(claims, now) {
		return claims, domain.ErrTokenExpired.WithDetails("expired at " + claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return claims, nil
}

// rolesClaim accepts "roles" as a list or a comma separated string, and a
// single "role" string.
func rolesClaim(mc jwt.MapClaims) []string {
	var roles []string
	switch r := mc["roles"].(type) {
	case []any:
		for _, v := range r {
			if s, ok := v.(string); ok && s != "" {
				roles = append(roles, s)
			}
		}
	case string:
		for _, s := range strings.Split(r, ",") {
			if s = strings.TrimSpace(s); s != "" {
				roles = append(roles, s)
			}
		}
	}
	if role, ok := mc["role"].(string); ok && role != "" {
		roles = append(roles, role)
	}
	return roles
}
