package password

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultMinLength = 8
	DefaultMaxLength = 128
	// specialChars is the accepted set of non-alphanumeric characters.
	specialChars = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"
)

var commonPasswords = map[string]struct{}{
	"password": {}, "123456": {}, "123456789": {}, "qwerty": {}, "abc123": {},
	"password123": {}, "admin": {}, "letmein": {}, "welcome": {}, "monkey": {},
}

// Policy describes password strength requirements. Zero lengths fall back
// to 8 and 128 characters.
type Policy struct {
	MinLength int
	MaxLength int
	// MaxRepeat is the longest allowed run of one character; 0 means 2.
	MaxRepeat int
}

// DefaultPolicy returns the stock requirements.
func DefaultPolicy() Policy {
	return Policy{MinLength: DefaultMinLength, MaxLength: DefaultMaxLength, MaxRepeat: 2}
}

// PolicyResult lists every rule a password broke.
type PolicyResult struct {
	Valid    bool
	Messages []string
}

// Error joins the messages, or returns "" for a valid password.
func (r PolicyResult) Error() string {
	if r.Valid {
		return ""
	}
	return "Password does not meet security requirements: " + strings.Join(r.Messages, ", ")
}

// Check evaluates password against every rule and reports all violations.
func (p Policy) Check(password string) PolicyResult {
	if password == "" {
		return PolicyResult{Messages: []string{"Password cannot be empty"}}
	}

	minLen, maxLen, maxRepeat := p.MinLength, p.MaxLength, p.MaxRepeat
	if minLen <= 0 {
		minLen = DefaultMinLength
	}
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	if maxRepeat <= 0 {
		maxRepeat = 2
	}

	var msgs []string
	n := utf8.RuneCountInString(password)
	if n < minLen {
		msgs = append(msgs, "Password must be at least "+strconv.Itoa(minLen)+" characters long")
	}
	if n > maxLen {
		msgs = append(msgs, "Password must not exceed "+strconv.Itoa(maxLen)+" characters")
	}

	var upper, lower, digit, special, space bool
	run, longest := 0, 0
	var prev rune = -1
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		case unicode.IsSpace(r):
			space = true
		}
		if r == prev {
			run++
		} else {
			run = 1
			prev = r
		}
		if run > longest {
			longest = run
		}
	}

	if !upper {
		msgs = append(msgs, "Password must contain at least one uppercase letter")
	}
	if !lower {
		msgs = append(msgs, "Password must contain at least one lowercase letter")
	}
	if !digit {
		msgs = append(msgs, "Password must contain at least one digit")
	}
	if !special {
		msgs = append(msgs, "Password must contain at least one special character")
	}
	if space {
		msgs = append(msgs, "Password must not contain whitespace characters")
	}
	if longest > maxRepeat {
		msgs = append(msgs, "Password must not contain more than "+strconv.Itoa(maxRepeat)+" consecutive identical characters")
	}
	if _, common := commonPasswords[strings.ToLower(password)]; common {
		msgs = append(msgs, "Password is too common, please choose a stronger password")
	}

	return PolicyResult{Valid: len(msgs) == 0, Messages: msgs}
}
