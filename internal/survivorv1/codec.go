package survivorv1

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// Codec replaces connect's protobuf JSON codec so that plain Go structs can
// travel as request and response messages.
type Codec struct{}

var _ connect.Codec = Codec{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to decode %T: %w", msg, err)
	}
	return nil
}
