// Package auth verifies that webhook requests come from the SMS provider.
package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"sort"
	"strings"
)

// ErrAuthentication is returned when a request signature is missing or wrong.
var ErrAuthentication = errors.New("request authentication failed")

// FailureText is replied to the provider when a request cannot be verified.
const FailureText = "We couldn't authenticate this request."

// Validator checks X-Twilio-Signature values: base64(HMAC-SHA1(token, url +
// sorted form key/value pairs)).
type Validator struct {
	token []byte
}

// NewValidator builds a validator for the account auth token.
func NewValidator(authToken string) *Validator {
	return &Validator{token: []byte(authToken)}
}

// Sign computes the signature for url and form params.
func (v *Validator) Sign(url string, params map[string][]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		values := append([]string(nil), params[k]...)
		sort.Strings(values)
		for _, val := range values {
			b.WriteString(k)
			b.WriteString(val)
		}
	}

	mac := hmac.New(sha1.New, v.token)
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Validate returns ErrAuthentication unless signature matches url and params.
func (v *Validator) Validate(url string, params map[string][]string, signature string) error {
	if len(v.token) == 0 || signature == "" {
		return ErrAuthentication
	}
	expected := v.Sign(url, params)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrAuthentication
	}
	return nil
}
