package api

import (
	"fmt"
	"net/mail"
	"unicode"
	"unicode/utf8"

	appErr "ojclient/pkg/errors"
)

const (
	usernameMinLen = 4
	usernameMaxLen = 20
)

// ReservedUsername is created with the system and accepted as is.
const ReservedUsername = "root"

// ValidateUsername checks the username rule the backend enforces on register.
func ValidateUsername(name string) error {
	if name == ReservedUsername {
		return nil
	}
	// Length is measured in bytes, as the backend does.
	switch {
	case len(name) < usernameMinLen:
		return usernameError(name, "too short (< 4)")
	case len(name) > usernameMaxLen:
		return usernameError(name, "too long (> 20)")
	}
	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsLetter(first) {
		return usernameError(name, "must start with a letter")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return usernameError(name, fmt.Sprintf("contains invalid char '%c'", r))
		}
	}
	return nil
}

func usernameError(name, reason string) error {
	e := appErr.ValidationError("username", reason).WithDetail("value", name)
	e.Code = appErr.InvalidUsername
	return e
}

// ValidateEmail rejects addresses that are not a bare addr-spec.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		e := appErr.ValidationError("email", "not a valid address").WithDetail("value", email)
		e.Code = appErr.InvalidEmail
		return e
	}
	return nil
}

// ValidateRegister runs the opt-in checks for a register payload.
func ValidateRegister(p RegisterPayload) error {
	if err := ValidateUsername(p.Username); err != nil {
		return err
	}
	if err := ValidateEmail(p.Email); err != nil {
		return err
	}
	if p.PasswordHash == "" {
		return appErr.ValidationError("passwordHash", "must not be empty")
	}
	return nil
}
