package cache

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Uzinex/Boost/internal/domain"
)

const keySeparator = ":"

// Key joins a namespace and segments into the canonical
// <namespace>:<segment>[:<segment>...] cache key shape.
func Key(namespace string, segments ...string) string {
	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, namespace)
	parts = append(parts, segments...)
	return strings.Join(parts, keySeparator)
}

// encodeValue stores strings and byte slices verbatim and everything else as
// compact JSON.
func encodeValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%w: marshal value: %v", domain.ErrCacheData, err)
	}
	return string(raw), nil
}

func decodeJSON(key, raw string, out any) error {
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", domain.ErrCacheData, key, err)
	}
	return nil
}
