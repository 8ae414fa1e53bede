package player

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Tokens signs stream urls so that a stream can be served only for the lease
// it was issued for.
type Tokens struct {
	secret []byte
}

type StreamClaims struct {
	LeaseID string `json:"lease"`
	VideoID string `json:"video"`
	jwt.StandardClaims
}

func NewTokens(secret string) *Tokens {
	return &Tokens{
		secret: []byte(secret),
	}
}

func (s *Tokens) Sign(l *Lease) (string, error) {
	clms := &StreamClaims{
		LeaseID: l.ID,
		VideoID: l.VideoID,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: l.ExpiresAt.Add(24 * time.Hour).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, clms)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign stream token")
	}
	return tokenString, nil
}

func (s *Tokens) Parse(tokenString string) (*StreamClaims, error) {
	clms := &StreamClaims{}
	_, err := jwt.ParseWithClaims(tokenString, clms, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse stream token")
	}
	if clms.LeaseID == "" || clms.VideoID == "" {
		return nil, errors.New("incomplete stream token")
	}
	return clms, nil
}
