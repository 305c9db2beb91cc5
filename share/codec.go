// Package share encodes the live article into a URL-safe token for the
// #share= fragment and decodes inbound tokens back into a payload.
package share

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/RobSonPL/Blog-Ai/generator"
)

// MaxTokenLength is the size budget for an encoded token. Past it the logo is
// the first thing to go; article text itself is never dropped.
const MaxTokenLength = 30000

// ErrDecode wraps every decode failure. Callers treat it as "ignore the token
// and continue"; it must never escape into application flow uncaught.
var ErrDecode = errors.New("malformed share token")

// Payload is the ephemeral unit of sharing. Built at encode time, consumed at
// decode time, never stored.
type Payload struct {
	Article  generator.Article `json:"article"`
	Category string            `json:"category"`
	Logo     string            `json:"logo,omitempty"`
}

// Encode serializes the payload to a token safe for a URL fragment. JSON is
// UTF-8, so multi-byte article text survives the base64 transform unchanged.
// If the token exceeds the budget and a logo is present, it re-encodes once
// with the logo stripped; an oversized token with no logo is returned as-is.
func Encode(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode share payload: %w", err)
	}
	token := base64.URLEncoding.EncodeToString(raw)
	if len(token) <= MaxTokenLength || p.Logo == "" {
		return token, nil
	}

	slim, err := sjson.Delete(string(raw), "logo")
	if err != nil {
		return "", fmt.Errorf("strip logo from share payload: %w", err)
	}
	return base64.URLEncoding.EncodeToString([]byte(slim)), nil
}

// Decode is the inverse transform. Invalid base64, non-JSON content, or a
// missing article field all yield ErrDecode.
func Decode(token string) (Payload, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !gjson.ValidBytes(raw) {
		return Payload{}, fmt.Errorf("%w: payload is not JSON", ErrDecode)
	}
	if !gjson.GetBytes(raw, "article.title").Exists() {
		return Payload{}, fmt.Errorf("%w: payload has no article", ErrDecode)
	}

	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return p, nil
}
