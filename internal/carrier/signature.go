package carrier

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"sort"
)

// SignatureValidator verifies the carrier's webhook signature scheme:
// HMAC-SHA1 over the full request URL concatenated with every form
// parameter name and value in lexical order, base64-encoded.
type SignatureValidator struct {
	authToken string
}

// NewSignatureValidator creates a validator for the shared auth token
func NewSignatureValidator(authToken string) *SignatureValidator {
	return &SignatureValidator{authToken: authToken}
}

// Compute returns the expected signature for a request
func (v *SignatureValidator) Compute(requestURL string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	payload := requestURL
	for _, k := range keys {
		payload += k + params[k]
	}

	mac := hmac.New(sha1.New, []byte(v.authToken))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Validate reports whether the presented signature matches the request
func (v *SignatureValidator) Validate(requestURL string, params map[string]string, signature string) bool {
	if signature == "" {
		return false
	}
	expected := v.Compute(requestURL, params)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
