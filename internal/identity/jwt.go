package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type claims struct {
	UID  string `json:"uid"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// JWTVerifier validates bearer tokens issued by the platform's identity
// provider (HS256 with a shared secret).
type JWTVerifier struct {
	secret string
}

func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

func (v *JWTVerifier) VerifyToken(tokenString string) (Identity, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(tokenString, c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.secret), nil
	})
	if err != nil || !token.Valid || c.UID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UID: c.UID, Kind: c.Kind}, nil
}

// SignToken issues a token the verifier accepts. Only development tooling
// and tests use this; in production tokens come from the identity provider.
func SignToken(secret, uid, kind string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UID:  uid,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "jobmatch",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	})
	return token.SignedString([]byte(secret))
}
