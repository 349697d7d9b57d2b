package repository

import (
	"encoding/json"
	"fmt"

	"github.com/186mph/calsoft-assets/internal/domain"
)

func marshalPayload(p domain.Payload) ([]byte, error) {
	if p == nil {
		p = domain.Payload{}
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return b, nil
}

func unmarshalPayload(b []byte) (domain.Payload, error) {
	if len(b) == 0 {
		return domain.Payload{}, nil
	}
	var p domain.Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return domain.Payload{}, fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	return p, nil
}
