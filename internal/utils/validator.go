// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("cpf", validateCPF)
	validate.RegisterValidation("cep", validateCEP)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasNumber && hasSpecial
}

var nonDigits = regexp.MustCompile(`\D`)

func validateCPF(fl validator.FieldLevel) bool {
	return IsValidCPF(fl.Field().String())
}

// IsValidCPF checks the two verifier digits of a Brazilian CPF. Accepts
// punctuated ("000.000.000-00") or bare input.
func IsValidCPF(cpf string) bool {
	cpf = nonDigits.ReplaceAllString(cpf, "")
	if len(cpf) != 11 {
		return false
	}

	// All-same-digit sequences pass the checksum but are not valid CPFs.
	if strings.Count(cpf, string(cpf[0])) == 11 {
		return false
	}

	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(cpf[i]-'0') * (pos + 1 - i)
		}
		digit := (sum * 10) % 11
		if digit == 10 {
			digit = 0
		}
		if digit != int(cpf[pos]-'0') {
			return false
		}
	}

	return true
}

// NormalizeCPF strips punctuation, keeping the 11 digits stored in the
// database.
func NormalizeCPF(cpf string) string {
	return nonDigits.ReplaceAllString(cpf, "")
}

// NormalizeCEP strips the hyphen from a postal code ("01310-100" → "01310100").
func NormalizeCEP(cep string) string {
	return nonDigits.ReplaceAllString(cep, "")
}

func validateCEP(fl validator.FieldLevel) bool {
	cep := nonDigits.ReplaceAllString(fl.Field().String(), "")
	return len(cep) == 8
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "strong_password":
		return "Password must contain at least 8 characters with uppercase, lowercase, number, and special character"
	case "cpf":
		return "Invalid CPF"
	case "cep":
		return "Invalid CEP"
	default:
		return e.Field() + " is invalid"
	}
}
