package client

import (
	"encoding/json"
	"fmt"
)

// envelope is the wrapper most endpoints answer with.
type envelope[T any] struct {
	Success *bool  `json:"success,omitempty"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// decodeData unwraps a {"data": T} body. A body with "success": false is
// reported as an error even on a 2xx status.
func decodeData[T any](body []byte) (T, error) {
	var env envelope[T]
	if err := json.Unmarshal(body, &env); err != nil {
		var zero T
		return zero, fmt.Errorf("decode response: %w", err)
	}
	if env.Success != nil && !*env.Success {
		var zero T
		return zero, &APIError{StatusCode: 422, Message: firstNonEmpty(env.Message, env.Error)}
	}
	return env.Data, nil
}

// decodeRoot decodes a body that is not wrapped in an envelope.
func decodeRoot[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decode response: %w", err)
	}
	return v, nil
}

// errorMessage extracts the server message from an error body, if any.
func errorMessage(body []byte) string {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return firstNonEmpty(env.Message, env.Error)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
