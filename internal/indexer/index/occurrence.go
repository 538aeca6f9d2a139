package index

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes the occurrence as ["term", position].
func (o Occurrence) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{o.Term, o.Position})
}

// UnmarshalJSON decodes ["term", position].
func (o *Occurrence) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding occurrence: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("decoding occurrence: want [term, position], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &o.Term); err != nil {
		return fmt.Errorf("decoding occurrence term: %w", err)
	}
	if err := json.Unmarshal(raw[1], &o.Position); err != nil {
		return fmt.Errorf("decoding occurrence position: %w", err)
	}
	return nil
}
