package auth

import (
	"crypto/subtle"
	"encoding/base64"
)

// EncodePassword applies the demo credential encoding. It is reversible
// base64, not a cryptographic hash: the login contract is only that the
// stored encoding matches the encoding of the presented password. Do not
// treat this as a security mechanism.
func EncodePassword(plain string) string {
	return base64.StdEncoding.EncodeToString([]byte(plain))
}

// VerifyPassword reports whether plain encodes to enc.
func VerifyPassword(enc, plain string) bool {
	return subtle.ConstantTimeCompare([]byte(enc), []byte(EncodePassword(plain))) == 1
}
