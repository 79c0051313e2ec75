// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandomString returns a cryptographically random alphanumeric string.
func GenerateRandomString(length int) (string, error) {
	var sb strings.Builder
	sb.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphanumeric))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphanumeric[n.Int64()])
	}

	return sb.String(), nil
}

// GenerateOrderNumber returns a human-readable order reference,
// e.g. ORD-20260829-7K2F9QXB.
func GenerateOrderNumber() string {
	suffix, err := GenerateRandomString(8)
	if err != nil {
		suffix = fmt.Sprintf("%08d", time.Now().UnixNano()%100000000)
	}
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}

// GenerateTransactionRef returns a reference for wallet and deposit
// transactions, e.g. TXN-1B4D6F8A2C.
func GenerateTransactionRef() string {
	suffix, err := GenerateRandomString(10)
	if err != nil {
		suffix = fmt.Sprintf("%010d", time.Now().UnixNano()%10000000000)
	}
	return fmt.Sprintf("TXN-%s", suffix)
}

func HashString(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}
