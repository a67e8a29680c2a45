package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes; the resulting
// string is twice as long. Opaque refresh tokens are minted with it.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of b with zeros. Secrets typed at
// the console prompt are wiped with it once the login call returns.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
