package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when the token is not three dot-separated
	// segments or the payload segment is not base64url JSON.
	ErrMalformedToken = errors.New("malformed token")
	// ErrMissingExpiry is returned when the payload has no usable exp claim.
	ErrMissingExpiry = errors.New("token has no exp claim")
)

var unverifiedParser = jwt.NewParser()

// ExpiresAt decodes the exp claim of token without verifying it. Only the
// second dot-segment is read; the header and signature may be anything.
//
// ExpiresAt returns ErrMalformedToken or ErrMissingExpiry (both wrapping the
// decoder error where there is one). It is safe for concurrent use.
func ExpiresAt(token string) (time.Time, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedToken, len(parts))
	}
	payload, err := unverifiedParser.DecodeSegment(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrMissingExpiry, err)
	}
	if exp == nil {
		return time.Time{}, ErrMissingExpiry
	}
	return exp.Time, nil
}

// Remaining is the time left before token expires, measured from now.
// A non-positive result means the token is already expired.
func Remaining(token string, now time.Time) (time.Duration, error) {
	exp, err := ExpiresAt(token)
	if err != nil {
		return 0, err
	}
	return exp.Sub(now), nil
}
