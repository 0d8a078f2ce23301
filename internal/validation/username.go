// Package validation holds input validation rules shared by the service
// layer.
package validation

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 64
)

var reservedUsernames = map[string]struct{}{
	"admin":     {},
	"anonymous": {},
	"api":       {},
	"me":        {},
	"moderator": {},
	"pulse":     {},
	"root":      {},
	"system":    {},
}

// ValidateUsername checks a caller-chosen display name. Generated defaults
// are not passed through here.
func ValidateUsername(username string) error {
	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return fmt.Errorf("username must be %d-%d characters", usernameMinLen, usernameMaxLen)
	}

	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return fmt.Errorf("username cannot contain whitespace")
		}
	}

	if _, exists := reservedUsernames[strings.ToLower(username)]; exists {
		return fmt.Errorf("username is reserved")
	}

	return nil
}
