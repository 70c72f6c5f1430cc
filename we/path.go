package we

import (
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// SelectPath projects the value at path in the JSON encoding of the state.
// A single field name such as "counter" selects that field; nested values use
// gjson dotted paths. States that fail to encode project to a missing result.
func SelectPath[S any](source Source[S], path string) *Selection[S, gjson.Result] {
	return Select(source, func(state S) gjson.Result {
		return PathOf(state, path)
	})
}

func PathOf(state any, path string) gjson.Result {
	encoded, err := json.Marshal(state)
	if err != nil {
		return gjson.Result{}
	}

	return gjson.GetBytes(encoded, path)
}
