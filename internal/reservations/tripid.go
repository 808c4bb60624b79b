package reservations

import (
	"crypto/rand"
	"fmt"
)

// Trip IDs are short human-readable references printed on confirmations
// and read over the phone, so the alphabet omits easily confused
// characters.
const tripIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const tripIDLength = 8

// GenerateTripID returns a new reference of the form TB-XXXXXXXX.
func GenerateTripID() (string, error) {
	buf := make([]byte, tripIDLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate trip id: %w", err)
	}
	for i, b := range buf {
		buf[i] = tripIDAlphabet[int(b)%len(tripIDAlphabet)]
	}
	return "TB-" + string(buf), nil
}
