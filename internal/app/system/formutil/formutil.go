// Package formutil decodes JSON request bodies for the API handlers.
//
// Every body is size-capped and must hold exactly one JSON value. Unknown
// fields are ignored so clients may send extra keys.
package formutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes caps request bodies. Lifecycle requests carry three short
// strings.
const MaxBodyBytes = 64 << 10

// ErrBadBody is returned for empty, oversized or malformed bodies.
var ErrBadBody = errors.New("invalid request body")

// DecodeJSON reads r's body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return ErrBadBody
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrBadBody
	}
	return nil
}
