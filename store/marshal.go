package store

import (
	"encoding/json"
)

type marshaller interface {
	Serialize(in any) (string, error)
	Deserialize(in string, out any) error
}

type jsonMarshaller struct{}

func (jsonMarshaller) Serialize(in any) (string, error) {
	bytes, err := json.Marshal(in)
	return string(bytes), err
}

func (jsonMarshaller) Deserialize(in string, out any) error {
	return json.Unmarshal([]byte(in), out)
}

// stateEnvelope wraps the state so that a stored nil is distinguishable
// from an absent key.
type stateEnvelope[TState any] struct {
	V *TState
}
