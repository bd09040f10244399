package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexUint64 is a uint64 that accepts either a JSON number or a JSON
// string on input. Scenario version tokens arrive both ways from
// clients, so every version field on a request DTO uses this type.
type FlexUint64 uint64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexUint64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("FlexUint64: invalid uint64 string %q: %w", s, err)
		}
		*f = FlexUint64(n)
		return nil
	}

	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("FlexUint64: expected number or string: %w", err)
	}
	*f = FlexUint64(n)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexUint64) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint64(f))
}

// Uint64 converts back to a plain uint64.
func (f FlexUint64) Uint64() uint64 {
	return uint64(f)
}
