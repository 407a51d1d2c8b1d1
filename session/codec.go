package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the self-contained session credential. The server keeps no
// session table; the cookie value is the session of record.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// Codec encodes and decodes the session credential. Decoding is pure
// structural parsing with no external state: a corrupt value is an error
// here, which the Manager turns into "no session".
type Codec interface {
	Encode(claims *Claims) (string, error)
	Decode(value string) (*Claims, error)
}

// Base64Codec stores the claims as base64 of a small JSON object. This is
// the default codec; it provides opacity, not integrity.
type Base64Codec struct{}

func (Base64Codec) Encode(claims *Claims) (string, error) {
	b, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (Base64Codec) Decode(value string) (*Claims, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, err
	}
	var claims Claims
	if err := json.Unmarshal(b, &claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.Email == "" {
		return nil, errors.New("session: incomplete claims")
	}
	return &claims, nil
}

// JWTCodec signs the claims with HS256 so a tampered cookie fails to decode.
// It does not add revocability; the credential is still client-held only.
type JWTCodec struct {
	secret []byte
	maxAge time.Duration
}

// NewJWTCodec creates an HS256 codec. maxAge bounds the embedded expiry and
// should match the cookie max-age.
func NewJWTCodec(secret string, maxAge time.Duration) *JWTCodec {
	return &JWTCodec{secret: []byte(secret), maxAge: maxAge}
}

type jwtClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c *JWTCodec) Encode(claims *Claims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Email: claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
	})
	return token.SignedString(c.secret)
}

func (c *JWTCodec) Decode(value string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(value, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("session: unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid || claims.Subject == "" || claims.Email == "" {
		return nil, errors.New("session: invalid token")
	}
	return &Claims{UserID: claims.Subject, Email: claims.Email}, nil
}
