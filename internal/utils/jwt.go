package utils // package utils provides the password hasher and the token codec

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/citycat-users/internal/apperror"
)

// MinSecretLength is the shortest signing secret accepted for HS256.
const MinSecretLength = 32

var (
	ErrEmptySecret = errors.New("jwt secret must not be empty")
	ErrShortSecret = errors.New("jwt secret must be at least 32 bytes")
)

// Claims is the payload of an access token. UserID is serialized as
// "user_id" so tokens minted by earlier deployments keep decoding.
type Claims struct {
	UserID uint64 `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 access tokens carrying a user id.
// The secret is fixed at construction; a codec is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec validates the secret and returns a codec. A zero ttl issues
// tokens without an exp claim; such tokens stay valid as long as the
// signature verifies.
func NewTokenCodec(secret string, ttl time.Duration) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if len(secret) < MinSecretLength {
		return nil, ErrShortSecret
	}
	if ttl < 0 {
		ttl = 0
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Encode returns a signed token for userID.
func (c *TokenCodec) Encode(userID uint64) (string, error) {
	now := c.now().UTC()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies token and returns the user id it carries. Every failure
// (blank, malformed, bad signature, expired, missing id) is reported as
// apperror.ErrInvalidToken; the underlying parser error is not exposed.
func (c *TokenCodec) Decode(token string) (uint64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, apperror.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperror.ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !parsed.Valid {
		return 0, apperror.ErrInvalidToken
	}
	if claims.UserID == 0 {
		return 0, apperror.ErrInvalidToken
	}
	return claims.UserID, nil
}
