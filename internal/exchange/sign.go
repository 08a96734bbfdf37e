package exchange

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
)

// HmacSHA256Hex signs str with secret and returns the hex digest.
func HmacSHA256Hex(str, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil))
}

// HmacSHA512Hex signs str with secret and returns the hex digest.
func HmacSHA512Hex(str, secret string) string {
	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil))
}

// HmacSHA256Base64 signs str with secret and returns the base64 digest.
func HmacSHA256Base64(str, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(str))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
