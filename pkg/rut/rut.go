// Package rut valida y formatea el Rol Único Tributario chileno.
package rut

import (
	"fmt"
	"regexp"
	"strings"
)

// Largo aceptado tras limpiar separadores (cuerpo + dígito verificador).
const (
	minLen = 7
	maxLen = 9
)

var rutPattern = regexp.MustCompile(`^[0-9]+K?$`)

// Clean quita puntos, guiones y espacios, y normaliza la "k" a mayúscula.
func Clean(s string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(strings.TrimSpace(s)))
}

// Validate informa si s tiene forma de RUT: 7 a 9 caracteres tras limpiar,
// dígitos con una "K" final opcional. No verifica el dígito (ver VerifyCheckDigit).
func Validate(s string) bool {
	c := Clean(s)
	if len(c) < minLen || len(c) > maxLen {
		return false
	}
	return rutPattern.MatchString(c)
}

// ComputeCheckDigit calcula el dígito verificador (módulo 11) para el cuerpo numérico.
// Pesos 2..7 cíclicos de derecha a izquierda; 11 -> '0', 10 -> 'K'.
func ComputeCheckDigit(body string) (byte, error) {
	if body == "" {
		return 0, fmt.Errorf("rut: cuerpo vacío")
	}
	sum, weight := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		d := body[i]
		if d < '0' || d > '9' {
			return 0, fmt.Errorf("rut: carácter no numérico %q en el cuerpo", d)
		}
		sum += int(d-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch v := 11 - sum%11; v {
	case 11:
		return '0', nil
	case 10:
		return 'K', nil
	default:
		return byte('0' + v), nil
	}
}

// VerifyCheckDigit valida forma y dígito verificador.
func VerifyCheckDigit(s string) error {
	if !Validate(s) {
		return fmt.Errorf("rut: formato inválido %q", s)
	}
	c := Clean(s)
	body, dv := c[:len(c)-1], c[len(c)-1]
	expected, err := ComputeCheckDigit(body)
	if err != nil {
		return err
	}
	if dv != expected {
		return fmt.Errorf("rut: dígito verificador inválido: esperado %c, recibido %c", expected, dv)
	}
	return nil
}

// Format devuelve el RUT con puntos de miles y guión antes del dígito verificador
// (123456785 -> 12.345.678-5). Si s no pasa Validate, se devuelve sin cambios.
func Format(s string) string {
	if !Validate(s) {
		return s
	}
	c := Clean(s)
	body, dv := c[:len(c)-1], c[len(c)-1:]

	var b strings.Builder
	lead := len(body) % 3
	if lead > 0 {
		b.WriteString(body[:lead])
	}
	for i := lead; i < len(body); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(body[i : i+3])
	}
	b.WriteByte('-')
	b.WriteString(dv)
	return b.String()
}
