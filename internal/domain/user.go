package domain

// User is a registered account. PasswordHash is a bcrypt hash; the plaintext
// password is never stored or compared directly.
type User struct {
	Name         string
	Email        string
	PasswordHash []byte
}
