package helpers

import (
	"encoding/base64"
	"errors"

	"github.com/google/uuid"
)

var ErrInvalidUserRef = errors.New("invalid user reference")

// EncodeUserRef turns a user id into the opaque URL-safe segment used in
// password reset links.
func EncodeUserRef(userID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(userID))
}

// DecodeUserRef reverses EncodeUserRef and checks the result is a uuid.
func DecodeUserRef(ref string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(ref)
	if err != nil {
		return "", ErrInvalidUserRef
	}
	id, err := uuid.ParseBytes(b)
	if err != nil {
		return "", ErrInvalidUserRef
	}
	return id.String(), nil
}
