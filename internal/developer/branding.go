package developer

import (
	"encoding/json"
	"fmt"
)

func marshalBranding(b Branding) ([]byte, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("developer: marshal branding: %w", err)
	}
	return raw, nil
}

func unmarshalBranding(raw []byte) (*Branding, error) {
	var b Branding
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("developer: unmarshal branding: %w", err)
	}
	return &b, nil
}
