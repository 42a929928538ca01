// Package auth verifies bearer credentials issued by the external identity
// provider. The server never issues tokens itself; it only checks the HS256
// signature and extracts the stable owner identifier.
package auth

import (
	"errors"

	"github.com/dmitrijs2005/skydrive/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the owner identifier set by the
// identity provider.
type Claims struct {
	jwt.RegisteredClaims
	OwnerID string `json:"ownerId"`
}

// OwnerIDFromToken validates tokenString against secretKey and returns the
// owner identifier. The owner may be carried either in the custom ownerId
// claim or in the standard subject.
func OwnerIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return "", errors.Join(common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	ownerID := claims.OwnerID
	if ownerID == "" {
		ownerID = claims.Subject
	}
	if ownerID == "" {
		return "", common.ErrInvalidToken
	}

	return ownerID, nil
}
