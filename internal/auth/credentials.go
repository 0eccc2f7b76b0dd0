package auth

import "crypto/subtle"

// Credentials is the single admin account.
type Credentials struct {
	Username string
	Password string
}

// Check compares both fields in constant time. An empty configured password
// disables login entirely.
func (c Credentials) Check(username, password string) error {
	if c.Password == "" {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password))
	if userOK&passOK != 1 {
		return ErrInvalidCredentials
	}
	return nil
}
