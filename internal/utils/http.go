package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrInvalidBody is returned by DecodeJSON for empty or malformed bodies.
var ErrInvalidBody = errors.New("invalid JSON body")

const maxBodyBytes = 1 << 20

// JSON writes a JSON response with status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// JSONError writes {"error": "..."} with a given status.
func JSONError(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// DecodeJSON parses the request body into v. Unknown fields are ignored so
// that clients echoing server-owned fields (owner_id, created_at) are not
// rejected; those fields simply have nowhere to land.
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return ErrInvalidBody
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return ErrInvalidBody
	}
	return nil
}
