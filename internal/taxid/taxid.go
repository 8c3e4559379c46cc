// Package taxid handles Brazilian CPF (11 digits) and CNPJ (14 digits)
// identifiers as typed into the login form.
package taxid

import (
	"strings"

	"freightportal/internal/utils"
)

const (
	CPFLength  = 11
	CNPJLength = 14
)

// Normalize strips everything that is not an ASCII digit.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate checks the form value before any remote call is made.
func Validate(s string) error {
	if strings.TrimSpace(s) == "" {
		return utils.New(utils.KindValidation, "CPF/CNPJ é obrigatório")
	}
	switch len(Normalize(s)) {
	case CPFLength, CNPJLength:
		return nil
	default:
		return utils.New(utils.KindValidation, "CPF/CNPJ inválido")
	}
}

// ValidatePassword only requires a non-empty value.
func ValidatePassword(password string) error {
	if password == "" {
		return utils.New(utils.KindValidation, "Senha é obrigatória")
	}
	return nil
}

// Mask formats partial or complete input as 000.000.000-00 (up to 11
// digits) or 00.000.000/0000-00 (12 to 14 digits). Longer input is returned
// as bare digits.
func Mask(s string) string {
	d := Normalize(s)
	switch {
	case len(d) <= CPFLength:
		return group(d, []int{3, 3, 3, 2}, []string{".", ".", "-"})
	case len(d) <= CNPJLength:
		return group(d, []int{2, 3, 3, 4, 2}, []string{".", ".", "/", "-"})
	default:
		return d
	}
}

func group(d string, sizes []int, seps []string) string {
	var b strings.Builder
	pos := 0
	for i, n := range sizes {
		if pos >= len(d) {
			break
		}
		if i > 0 {
			b.WriteString(seps[i-1])
		}
		end := min(pos+n, len(d))
		b.WriteString(d[pos:end])
		pos = end
	}
	return b.String()
}

// DefaultPassword is the first-access password of an account that has not
// been provisioned yet: first three plus last three digits.
func DefaultPassword(digits string) string {
	if len(digits) < 3 {
		return digits + digits
	}
	return digits[:3] + digits[len(digits)-3:]
}
