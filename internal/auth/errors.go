package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the email or password is wrong.
	// Login never distinguishes the two.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUserNotFound is returned when a lookup matches no user.
	ErrUserNotFound = errors.New("user not found")

	// ErrDomainNotAllowed is returned when the email is outside the
	// configured institutional domain.
	ErrDomainNotAllowed = errors.New("email domain not allowed")

	// ErrWeakPassword is returned when the password is below the minimum length.
	ErrWeakPassword = errors.New("password too short")

	// ErrInvalidToken is returned when a token fails parsing or verification.
	ErrInvalidToken = errors.New("invalid or expired token")
)
