// Package code generates and normalizes the human-shareable list codes.
//
// A code is six meaningful characters in the shape AAA-999: three uppercase
// letters, a hyphen, three digits — short enough to read over the phone,
// with ~17.5 million combinations. Collisions are rare but possible, so the
// registry checks for an existing code and regenerates on conflict.
package code

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
)

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
)

// Pattern matches a well-formed code.
var Pattern = regexp.MustCompile(`^[A-Z]{3}-[0-9]{3}$`)

// New draws a fresh code uniformly at random.
func New() string {
	var b strings.Builder
	b.Grow(7)
	for i := 0; i < 3; i++ {
		b.WriteByte(letters[randIndex(len(letters))])
	}
	b.WriteByte('-')
	for i := 0; i < 3; i++ {
		b.WriteByte(digits[randIndex(len(digits))])
	}
	return b.String()
}

// Normalize upper-cases and trims user input so lookups are
// case-insensitive: "abc-123 " resolves the same list as "ABC-123".
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Valid reports whether s (after normalization) is a well-formed code.
func Valid(s string) bool {
	return Pattern.MatchString(Normalize(s))
}

func randIndex(n int) byte {
	// crypto/rand.Int never fails on the platforms we run on; a failure here
	// means the OS entropy source is broken and panicking is the only option.
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("code: reading random source: " + err.Error())
	}
	return byte(v.Int64())
}
