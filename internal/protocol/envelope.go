package protocol

import (
	"encoding/json"
	"fmt"
)

// The tag-and-payload encoding of a body. Data is absent for kinds without
// arguments.
type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func wrap(k Kind, payload any) (envelope, error) {
	env := envelope{Type: k}
	if payload == nil {
		return env, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return envelope{}, fmt.Errorf("%w: encode %s: %w", ErrMalformed, k, err)
	}
	env.Data = data
	return env, nil
}

// Encodes v as a single line, newline included.
func EncodeLine(v json.Marshaler) ([]byte, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
