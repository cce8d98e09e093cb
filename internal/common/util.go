package common

import "strings"

// WipeByteArray zeroes b in place. Used for passwords read from the terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// RequireIDs returns ErrEmptyIdentifier if any of ids is blank.
func RequireIDs(ids ...string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return ErrEmptyIdentifier
		}
	}
	return nil
}
