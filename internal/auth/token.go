package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued identity token stays valid. There is no
// revocation; logout is client-side token discard.
const TokenTTL = 8 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Identity is the authenticated principal carried by a valid token.
type Identity struct {
	UserID uint64
	Email  string
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256-signed identity tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: TokenTTL}
}

// Issue signs a token embedding the user id as subject plus the email,
// issued-at, and expiry claims.
func (s *TokenService) Issue(userID uint64, email string) (string, error) {
	now := time.Now()
	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Validate verifies signature and expiry and returns the embedded identity.
// Malformed, tampered, expired, and wrong-secret tokens all come back as
// ErrInvalidToken.
func (s *TokenService) Validate(token string) (*Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	userID, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || userID == 0 {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: userID, Email: c.Email}, nil
}
