package shortener

import (
	"github.com/jaevor/go-nanoid"
)

const (
	// CodeLength is the number of characters in a generated code.
	CodeLength = 7
	// Alphabet holds the 62 symbols codes are drawn from.
	Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeGenerator produces candidate short codes. Candidates are not guaranteed
// to be unique; the Repository decides.
type CodeGenerator func() string

// NewCodeGenerator returns a crypto-random generator over Alphabet.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	gen, err := nanoid.CustomASCII(Alphabet, length)
	if err != nil {
		return nil, err
	}

	return CodeGenerator(gen), nil
}

// ValidCode reports whether s has the shape of a generated code.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}

	for i := range len(s) {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}

	return true
}
