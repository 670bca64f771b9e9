package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/vaughan-dsouza/expensely/internal/models"
)

var (
	ErrSigningFailed = errors.New("auth: token signing failed")
	ErrInvalidToken  = errors.New("auth: invalid token")
	ErrExpiredToken  = errors.New("auth: token expired")
)

// Claims is what a signed access token carries. Subject is the user id.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime given to every issued token.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for u. A missing secret is reported as
// ErrSigningFailed rather than producing an unsigned-equivalent token.
func (s *TokenService) Issue(u models.User) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.Wrap(ErrSigningFailed, "secret not configured")
	}
	if u.ID == "" {
		return "", errors.Wrap(ErrSigningFailed, "missing subject")
	}

	now := s.now()
	claims := Claims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrapf(ErrSigningFailed, "%v", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Expiry is compared against
// the wall clock with no leeway.
func (s *TokenService) Verify(tokenStr string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, errors.Wrap(ErrInvalidToken, "secret not configured")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, errors.Wrapf(ErrInvalidToken, "%v", err)
	}

	// Valid strictly before exp, whatever comparison the parser used.
	if !s.now().Before(claims.ExpiresAt.Time) {
		return nil, ErrExpiredToken
	}
	if claims.Subject == "" {
		return nil, errors.Wrap(ErrInvalidToken, "missing subject")
	}
	return &claims, nil
}
