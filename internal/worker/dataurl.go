package worker

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// decodeDataURL splits a data:<mime>;base64,<payload> string on its
// first comma and decodes the payload as standard base64. Anything
// that isn't base64-flagged, or has no comma at all, is rejected.
func decodeDataURL(s string) ([]byte, error) {
	idx := strings.Index(s, ",")
	if idx < 0 {
		return nil, fmt.Errorf("data url has no comma separator")
	}

	meta := s[:idx]
	if !strings.Contains(meta, "base64") {
		return nil, fmt.Errorf("data url is not base64-encoded")
	}

	payload := s[idx+1:]
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return data, nil
}
