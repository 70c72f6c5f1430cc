package wehttp

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-store-go/we"
)

type StateSerializer[S any] func(state S) (map[string]any, error)

// FieldSerializer flattens the JSON object encoding of a state into a
// resource. States that do not encode to an object are nested under "value".
func FieldSerializer[S any](state S) (map[string]any, error) {
	serialized, err := json.Marshal(state)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal state")
	}

	resource := make(map[string]any)
	if err = json.Unmarshal(serialized, &resource); err != nil {
		return map[string]any{"value": json.RawMessage(serialized)}, nil
	}
	if resource == nil {
		resource = make(map[string]any)
	}

	return resource, nil
}

type SnapshotEncoder[S any] struct {
	Serializer StateSerializer[S]
}

func (encoder SnapshotEncoder[S]) Resource(snapshot we.Snapshot[S]) (map[string]any, error) {
	serialize := encoder.Serializer
	if serialize == nil {
		serialize = FieldSerializer[S]
	}

	resource, err := serialize(snapshot.State)
	if err != nil {
		return nil, err
	}

	resource["$revision"] = snapshot.Revision
	resource["$timestamp"] = snapshot.Timestamp
	resource["$sequence"] = snapshot.Sequence

	return resource, nil
}

func (encoder SnapshotEncoder[S]) Encode(w http.ResponseWriter, r *http.Request, snapshot we.Snapshot[S]) error {
	resource, err := encoder.Resource(snapshot)
	if err != nil {
		http.Error(w, "failed to encode state", http.StatusInternalServerError)
		return err
	}

	encoded, err := json.MarshalContext(r.Context(), resource)
	if err != nil {
		http.Error(w, "failed to encode state", http.StatusInternalServerError)
		return errors.Wrap(err, "failed to marshal resource")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(encoded)

	return err
}
