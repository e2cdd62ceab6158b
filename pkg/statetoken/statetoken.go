// Package statetoken encodes UI state into compact URL-fragment-safe tokens.
//
// A token is base64(JSON). The editor embeds it in the share URL's fragment and
// the public review page decodes it, so the same configuration survives reloads
// and cross-tab copies without a server round trip.
package statetoken

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// ErrEmptyToken is returned by Decode when the token is empty or only a "#".
var ErrEmptyToken = errors.New("statetoken: empty token")

// Encode serializes v into a token. On any serialization failure it returns
// the empty string rather than an error: an unencodable state must never break
// the page that embeds the token.
func Encode(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// Decode is the strict inverse of Encode. It unmarshals the token into out and
// reports malformed base64 or JSON as an error. Callers that need the
// "never fail, degrade to defaults" behavior collapse this error at their own
// boundary (see services.ConfigService.DecodeToken).
//
// A leading "#" is tolerated so raw location fragments can be passed through.
func Decode(token string, out any) error {
	token = strings.TrimPrefix(strings.TrimSpace(token), "#")
	if token == "" {
		return ErrEmptyToken
	}

	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		// Browsers' btoa produces standard encoding, but tokens that have
		// traveled through URLs may arrive URL-safe encoded.
		data, err = base64.URLEncoding.DecodeString(token)
		if err != nil {
			return errors.New("statetoken: malformed base64")
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return errors.New("statetoken: malformed payload")
	}
	return nil
}
