package auth

import (
	"errors"
	"strings"
)

const (
	// MinPasswordLength é o tamanho mínimo aceito para senhas.
	MinPasswordLength = 8

	specialChars = "!@#$%^&*(),.?\":{}|<>_-+=[]\\/'`~"
)

var (
	// ErrPasswordTooShort indica senha abaixo do tamanho mínimo.
	ErrPasswordTooShort = errors.New("password shorter than minimum length")
	// ErrPasswordNoSpecial indica senha sem caractere especial.
	ErrPasswordNoSpecial = errors.New("password missing special character")
)

// ValidatePassword aplica a política de senha: tamanho mínimo e pelo menos um
// caractere especial. As duas verificações são independentes; a primeira que
// falhar é reportada.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if !strings.ContainsAny(password, specialChars) {
		return ErrPasswordNoSpecial
	}
	return nil
}
