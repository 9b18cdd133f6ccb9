package warehouse

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignaturePrefix is optionally prepended to the hex digest by the sender
const SignaturePrefix = "sha256="

// Sign returns the hex HMAC-SHA256 of body under secret
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// verifySignature never panics: any malformed input is simply a mismatch.
func verifySignature(secret string, body []byte, signature string) bool {
	if secret == "" || len(body) == 0 {
		return false
	}

	signature = strings.TrimPrefix(strings.TrimSpace(signature), SignaturePrefix)
	if len(signature) != sha256.Size*2 {
		return false
	}
	given, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(given, mac.Sum(nil))
}
