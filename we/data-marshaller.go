package we

import (
	"fmt"

	"github.com/goccy/go-json"
)

const JSONEncoding = "application/json"

type Data struct {
	Encoding string `json:"encoding"`
	Data     []byte `json:"data"`
}

func (d Data) Empty() bool {
	return len(d.Data) == 0
}

type InvalidEncodingError struct {
	Expected string
	Actual   string
}

func (e *InvalidEncodingError) Error() string {
	return fmt.Sprintf("expected encoding %s, got %s", e.Expected, e.Actual)
}

func InvalidEncoding(expected string, actual string) error {
	return &InvalidEncodingError{
		Expected: expected,
		Actual:   actual,
	}
}

func MarshalToData(value any) (Data, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return Data{}, err
	}

	return Data{
		Encoding: JSONEncoding,
		Data:     data,
	}, nil
}

func UnmarshalFromData(data Data, value any) error {
	if data.Encoding != JSONEncoding {
		return InvalidEncoding(JSONEncoding, data.Encoding)
	}
	return json.Unmarshal(data.Data, value)
}
