// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCPF(t *testing.T) {
	valid := []string{
		"52998224725",
		"529.982.247-25",
		"11144477735",
		"123.456.789-09",
	}
	for _, cpf := range valid {
		assert.True(t, IsValidCPF(cpf), "expected %s to be valid", cpf)
	}

	invalid := []string{
		"",
		"1234567890",     // too short
		"123456789012",   // too long
		"11111111111",    // repeated digits pass the checksum but are rejected
		"00000000000",
		"52998224724",    // wrong check digit
		"529.982.247-15", // wrong first verifier
		"abcdefghijk",
	}
	for _, cpf := range invalid {
		assert.False(t, IsValidCPF(cpf), "expected %s to be invalid", cpf)
	}
}

func TestNormalizeCPF(t *testing.T) {
	assert.Equal(t, "52998224725", NormalizeCPF("529.982.247-25"))
	assert.Equal(t, "52998224725", NormalizeCPF("52998224725"))
}

func TestNormalizeCEP(t *testing.T) {
	assert.Equal(t, "01310100", NormalizeCEP("01310-100"))
	assert.Equal(t, "01310100", NormalizeCEP("01310100"))
}

func TestStrongPasswordValidation(t *testing.T) {
	type payload struct {
		Password string `validate:"strong_password"`
	}

	assert.NoError(t, ValidateStruct(&payload{Password: "Str0ng!Pass"}))

	weak := []string{
		"alllowercase1!",
		"ALLUPPERCASE1!",
		"NoNumbers!!",
		"NoSpecial11",
		"Sh0rt!",
	}
	for _, pw := range weak {
		assert.Error(t, ValidateStruct(&payload{Password: pw}), "expected %q to be rejected", pw)
	}
}

func TestCEPValidation(t *testing.T) {
	type payload struct {
		Cep string `validate:"cep"`
	}

	assert.NoError(t, ValidateStruct(&payload{Cep: "01310-100"}))
	assert.NoError(t, ValidateStruct(&payload{Cep: "01310100"}))
	assert.Error(t, ValidateStruct(&payload{Cep: "0131010"}))
	assert.Error(t, ValidateStruct(&payload{Cep: "013101000"}))
}
