package httputil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// MaxBodyBytes bounds every JSON request body. A full reorder of a large
// space is the biggest payload we expect.
const MaxBodyBytes = 10 << 20

// ParseJSON decodes the request body into dest, rejecting oversized bodies
// and trailing garbage
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if decoder.More() {
		return fmt.Errorf("invalid JSON: unexpected data after the top-level value")
	}

	return nil
}

// PathUUID returns the named path value after checking it is a UUID, so
// malformed ids fail with 400 instead of reaching the database
func PathUUID(r *http.Request, name string) (string, error) {
	raw := r.PathValue(name)
	if err := uuid.Validate(raw); err != nil {
		return "", fmt.Errorf("%s must be a UUID", name)
	}
	return raw, nil
}

// QueryBool parses a boolean query parameter, falling back to def when the
// parameter is absent or malformed
func QueryBool(r *http.Request, name string, def bool) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}
