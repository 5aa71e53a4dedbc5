package domain

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Credentials is the body of /auth/login and /auth/register.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is what the backend answers to login and register. Only
// login carries an access token.
type AuthResponse struct {
	Success     bool   `json:"success"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	Message     string `json:"message,omitempty"`
}

const MinPasswordLength = 6

// ServiceAccount is allowed even though it is not a personal mailbox.
const ServiceAccount = "donotreply@aiio.de"

// AllowedDomains are the mail domains that may use the console.
var AllowedDomains = []string{"innovo-consulting.de", "aiio.de"}

var (
	ErrEmailNotAllowed  = errors.New("Email must end with @innovo-consulting.de or @aiio.de")
	ErrPasswordTooShort = errors.New("Password must be at least 6 characters.")
)

// blank is every character browsers treat as whitespace in /\s/, which is
// wider than RE2's \s.
const blank = `\s\v\p{Z}\x{FEFF}`

var emailPattern = regexp.MustCompile(`^[^` + blank + `@]+@[^` + blank + `@]+\.[^` + blank + `@]+$`)

// NormalizeEmail lower-cases and trims an address the way the backend
// stores it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts local@domain addresses whose domain is allow-listed,
// plus the service account.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrEmailNotAllowed
	}
	lower := strings.ToLower(email)
	if lower == ServiceAccount {
		return nil
	}
	for _, d := range AllowedDomains {
		if strings.HasSuffix(lower, "@"+d) {
			return nil
		}
	}
	return ErrEmailNotAllowed
}

// ValidatePassword counts characters, not bytes.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

// Validate checks both fields, email first.
func (c Credentials) Validate() error {
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	return ValidatePassword(c.Password)
}
