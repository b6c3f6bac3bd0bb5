package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"sanitation-feedback-server/config"
	"sanitation-feedback-server/types"
)

// TokenService issues and verifies stateless bearer tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenService creates a token service from the JWT configuration
func NewTokenService(cfg config.JWTConfig) *TokenService {
	return &TokenService{
		secret: []byte(cfg.Secret),
		expiry: cfg.Expiry(),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Expiry returns the validity window of issued tokens.
func (ts *TokenService) Expiry() time.Duration {
	return ts.expiry
}

// Issue signs a token for the given account id and role.
func (ts *TokenService) Issue(subjectID uint, role types.Role) (string, error) {
	if !role.Valid() {
		return "", errors.New("cannot issue token for unknown role")
	}

	now := ts.now()
	claims := &types.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subjectID), 10),
			Issuer:    ts.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// Verify parses and validates a token. Every failure is an Unauthenticated ServiceError.
func (ts *TokenService) Verify(tokenString string) (*types.Claims, error) {
	if tokenString == "" {
		return nil, NewUnauthenticatedError("Authorization token required", nil)
	}

	token, err := jwt.ParseWithClaims(tokenString, &types.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return ts.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(ts.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewUnauthenticatedError("Token expired", err)
		}
		return nil, NewUnauthenticatedError("Invalid token", err)
	}

	claims, ok := token.Claims.(*types.Claims)
	if !ok || !token.Valid {
		return nil, NewUnauthenticatedError("Invalid token claims", nil)
	}
	if !claims.Role.Valid() {
		return nil, NewUnauthenticatedError("Invalid token claims", nil)
	}
	if _, err := claims.SubjectID(); err != nil {
		return nil, NewUnauthenticatedError("Invalid token claims", err)
	}
	return claims, nil
}

// Authorize checks that verified claims carry the role a route requires.
func Authorize(claims *types.Claims, required types.Role) error {
	if claims == nil {
		return NewUnauthenticatedError("Authorization token required", nil)
	}
	if claims.Role != required {
		return NewForbiddenError(string(required) + " access required")
	}
	return nil
}
