package playerv1

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// CodecName is the content subtype the player API is served with.
const CodecName = "json"

// JSONCodec marshals player messages as JSON.
type JSONCodec struct{}

func (JSONCodec) Name() string { return CodecName }

func (JSONCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %T", msg)
	}
	return data, nil
}

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		// Empty bodies are valid for requests without fields.
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return errors.Wrapf(err, "unmarshal %T", msg)
	}
	return nil
}
