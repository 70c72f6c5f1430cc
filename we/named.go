package we

import (
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
)

// Named values supply their own type name instead of the one derived from
// their Go type.
type Named interface {
	TypeName() string
}

// NameOf returns the type name of value as "<package>:<kebab-type>", for
// example "counter:increment" for counter.Increment{}.
func NameOf(value any) string {
	if typed, ok := value.(Named); ok {
		return typed.TypeName()
	}

	if value == nil {
		return "nil"
	}

	split := strings.Split(reflect.TypeOf(value).String(), ".")
	segments := make([]string, len(split))
	for i, segment := range split {
		s := strings.TrimLeft(segment, "*[]")
		segments[i] = strcase.ToKebab(s)
	}

	if len(segments) == 1 {
		return segments[0]
	}

	namespace := segments[0]
	name := strings.Join(segments[1:], "-")

	return namespace + ":" + name
}
