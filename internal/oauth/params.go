package oauth

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
)

// maxTokenRequestSize caps the token request body. Grant parameters are a
// handful of short strings.
const maxTokenRequestSize = 64 * 1024

// parseTokenRequest normalizes a token-endpoint request body into a single
// parameter set. Clients send either form-encoded or JSON bodies; both
// carry the same parameters and downstream code must not care which
// encoding was used.
func parseTokenRequest(r *http.Request) (url.Values, error) {
	mediaType := ""
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("invalid Content-Type: %w", err)
		}
		mediaType = parsed
	}

	if mediaType == "application/json" {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxTokenRequestSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}

		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, fmt.Errorf("malformed JSON body: %w", err)
		}

		values := url.Values{}
		for key, v := range raw {
			switch typed := v.(type) {
			case string:
				values.Set(key, typed)
			case float64, bool:
				values.Set(key, fmt.Sprint(typed))
			}
		}
		return values, nil
	}

	// Default: form-encoded, which also covers clients that omit the
	// Content-Type header entirely.
	r.Body = http.MaxBytesReader(nil, r.Body, maxTokenRequestSize)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("malformed form body: %w", err)
	}
	return r.PostForm, nil
}
