package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Encode serializes v to its self-describing wire form.
func Encode(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// Decode parses data, previously produced by Encode, into v. v must be a
// pointer.
func Decode(data []byte, v any) error {
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
