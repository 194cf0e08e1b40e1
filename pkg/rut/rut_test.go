package rut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-pos/pkg/rut"
)

func TestValidate_AceptaFormasValidas(t *testing.T) {
	casos := []string{
		"12.345.678-5",
		"123456785",
		"12345678-5",
		"1.234.567-4",
		"7654321-K",
		"7654321-k",
		"1234567",   // 7 caracteres
		"123456789", // 9 caracteres
	}
	for _, c := range casos {
		assert.True(t, rut.Validate(c), "debe aceptar %q", c)
	}
}

func TestValidate_RechazaLargoOCaracteres(t *testing.T) {
	casos := []string{
		"",
		"123456",     // 6 caracteres
		"1234567890", // 10 caracteres
		"12.345.67A-5",
		"K2345678",
		"12345K78",
		"abcdefg",
	}
	for _, c := range casos {
		assert.False(t, rut.Validate(c), "debe rechazar %q", c)
	}
}

func TestFormat_InsertaPuntosYGuion(t *testing.T) {
	assert.Equal(t, "12.345.678-5", rut.Format("123456785"))
	assert.Equal(t, "12.345.678-5", rut.Format("12345678-5"))
	assert.Equal(t, "1.234.567-4", rut.Format("12345674"))
	assert.Equal(t, "123.456-7", rut.Format("1234567"))
	assert.Equal(t, "7.654.321-K", rut.Format("7654321k"))
	assert.Equal(t, "12.345.678-9", rut.Format("12.345.678-9"), "formatear es idempotente")
}

func TestFormat_EntradaInvalidaSinCambios(t *testing.T) {
	assert.Equal(t, "123", rut.Format("123"))
	assert.Equal(t, "no-es-rut", rut.Format("no-es-rut"))
}

func TestComputeCheckDigit(t *testing.T) {
	dv, err := rut.ComputeCheckDigit("12345678")
	require.NoError(t, err)
	assert.Equal(t, byte('5'), dv)

	// 11 - (suma % 11) = 10 -> K
	dv, err = rut.ComputeCheckDigit("10000013")
	require.NoError(t, err)
	assert.Equal(t, byte('K'), dv)

	_, err = rut.ComputeCheckDigit("12a")
	assert.Error(t, err)
}

func TestVerifyCheckDigit(t *testing.T) {
	require.NoError(t, rut.VerifyCheckDigit("12.345.678-5"))
	assert.Error(t, rut.VerifyCheckDigit("12.345.678-9"), "dígito incorrecto")
	assert.Error(t, rut.VerifyCheckDigit("12"), "formato inválido")
}
