package user

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/wayteam/way-backend/core"
)

var (
	salt    = []byte("way.backend.core.user.otp")
	NowFunc = time.Now // mockable
)

// GenerateCode returns a random 6-digit verification code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// HashCode HMAC-signs a verification code so only its hash is persisted.
func HashCode(code string) []byte {
	key := sha256.Sum256(append(salt, core.Conf.SecretKey...))
	h := hmac.New(sha256.New, key[:])
	h.Write([]byte(code))
	return h.Sum(nil)
}

// checkCode verifies a submitted code against the stored hash and expiry.
func checkCode(hash []byte, expiry time.Time, code string) error {
	if len(hash) == 0 {
		return ErrInvalidCode
	}
	if subtle.ConstantTimeCompare(hash, HashCode(code)) == 0 {
		return ErrInvalidCode
	}
	if NowFunc().After(expiry) {
		return ErrCodeExpired
	}
	return nil
}
