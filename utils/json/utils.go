package json

import (
	"encoding/json"
	"fmt"
)

// Encode marshals message, returning an empty body when it cannot be encoded.
func Encode[T any](message T) []byte {
	body, err := json.Marshal(message)
	if err != nil {
		return []byte{}
	}
	return body
}

func EncodeAll[T any](messages []T) [][]byte {
	results := make([][]byte, len(messages))
	for i, it := range messages {
		results[i] = Encode(it)
	}
	return results
}

func Decode[T any](message []byte) (T, error) {
	var result T
	if err := json.Unmarshal(message, &result); err != nil {
		return *new(T), fmt.Errorf("decode %T: %w", result, err)
	}
	return result, nil
}

// DecodeOr returns fallback when message does not decode.
func DecodeOr[T any](message []byte, fallback T) T {
	result, err := Decode[T](message)
	if err != nil {
		return fallback
	}
	return result
}
