// Package tokens genera secretos aleatorios: tokens opacos de reset y
// códigos numéricos de verificación.
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

// ResetTokenBytes: 20 bytes aleatorios => 40 caracteres hex.
const ResetTokenBytes = 20

// GenerateResetToken genera un token opaco de 40 caracteres hexadecimales.
func GenerateResetToken() (string, error) {
	b := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

var codeSpace = big.NewInt(1_000_000)

// GenerateVerificationCode genera un código de 6 dígitos decimales con
// distribución uniforme en "000000".."999999" (ceros a la izquierda incluidos).
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SHA256Hex devuelve sha256(s) en hexadecimal. En DB se guarda el hash del
// token, nunca el token plano.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
