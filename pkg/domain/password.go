package domain

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	GeneratedPasswordLength = 8
	MaxPasswordLength       = 50
	passwordAlphabet        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

var passwordPattern = regexp.MustCompile(`^[A-Za-z0-9!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?~]{1,50}$`)

// ValidatePassword checks a caller supplied room password.
func ValidatePassword(password string) error {
	if !passwordPattern.MatchString(password) {
		return NewValidationFault("password must be 1-%d characters of letters, digits or !@#$%%^&*()_+-=[]{};':\"\\|,.<>/?~", MaxPasswordLength)
	}
	return nil
}

// GeneratePassword returns a random alphanumeric password.
func GeneratePassword() string {
	b := make([]byte, GeneratedPasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand never fails on supported platforms
			panic(err)
		}
		b[i] = passwordAlphabet[n.Int64()]
	}
	return string(b)
}

// ResolvePassword validates a non-empty password or generates a new one.
func ResolvePassword(password string) (string, error) {
	if password == "" {
		return GeneratePassword(), nil
	}
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	return password, nil
}
