package ean13

import (
	"fmt"
	"unicode"
)

// pesos GS1 para los 12 primeros dígitos, de izquierda a derecha.
var weights = [12]int{1, 3, 1, 3, 1, 3, 1, 3, 1, 3, 1, 3}

// Validate comprueba que code tenga 13 dígitos y un dígito de control GS1 correcto.
// No admite separadores: un EAN con espacios o guiones se rechaza.
func Validate(code string) error {
	if len(code) != 13 {
		return fmt.Errorf("ean13: debe tener 13 dígitos, se recibieron %d caracteres", len(code))
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return fmt.Errorf("ean13: carácter no numérico %q", r)
		}
	}
	expected, err := CheckDigit(code[:12])
	if err != nil {
		return err
	}
	if code[12] != expected {
		return fmt.Errorf("ean13: dígito de control inválido: esperado %c, recibido %c", expected, code[12])
	}
	return nil
}

// CheckDigit calcula el dígito de control para los 12 primeros dígitos.
func CheckDigit(base string) (byte, error) {
	if len(base) != 12 {
		return 0, fmt.Errorf("ean13: se requieren 12 dígitos para calcular el control, se recibieron %d", len(base))
	}
	var sum int
	for i := 0; i < 12; i++ {
		d := base[i]
		if d < '0' || d > '9' {
			return 0, fmt.Errorf("ean13: carácter no numérico %q", d)
		}
		sum += int(d-'0') * weights[i]
	}
	return byte('0' + (10-sum%10)%10), nil
}
