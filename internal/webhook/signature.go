package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
)

const SignatureHeader = "X-WC-Webhook-Signature"

// Verify checks header against HMAC-SHA256(secret, rawBody). rawBody must be
// the bytes as received; re-encoding a parsed body changes the digest.
// An empty secret disables verification.
func Verify(secret string, rawBody []byte, header string) bool {
	if secret == "" {
		return true
	}
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	if _, err := mac.Write(rawBody); err != nil {
		return false
	}
	digest := mac.Sum(nil)
	hexSum := hex.EncodeToString(digest)

	candidates := []string{
		base64.StdEncoding.EncodeToString(digest),
		hexSum,
		"sha256=" + hexSum,
	}
	for _, c := range candidates {
		if hmac.Equal([]byte(c), []byte(header)) {
			return true
		}
	}
	return false
}

// Sign returns the base64 signature WooCommerce sends for rawBody.
func Sign(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
