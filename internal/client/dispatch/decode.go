package dispatch

import (
	"encoding/json"
	"reflect"
	"strings"

	"ojclient/internal/api"
	"ojclient/internal/client/transport"
	appErr "ojclient/pkg/errors"
)

// decodeResponse turns a response into R. Non-2xx answers become protocol errors.
func decodeResponse[R any](resp transport.Response) (R, error) {
	var out R
	if !resp.OK() {
		return out, appErr.ProtocolError(resp.StatusCode, serverMessage(resp.Body))
	}
	switch v := any(&out).(type) {
	case *string:
		*v = string(resp.Body)
	case *[]byte:
		*v = resp.Body
	case *api.NoContent:
	default:
		if err := json.Unmarshal(resp.Body, &out); err != nil {
			var zero R
			return zero, decodeError(err, reflect.TypeOf((*R)(nil)).Elem().String())
		}
	}
	return out, nil
}

// decodeError keeps errors the report model already classified.
func decodeError(err error, target string) error {
	if appErr.KindOf(err) == appErr.KindDecode {
		return err
	}
	return appErr.DecodeError(err, target)
}

// serverMessage extracts the human readable message of an error body. The backend
// answers plain text; JSON bodies with a message field are accepted too.
func serverMessage(body []byte) string {
	text := strings.TrimSpace(string(body))
	if !strings.HasPrefix(text, "{") {
		return text
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return text
	}
	for _, key := range []string{"message", "msg", "error"} {
		if s, ok := fields[key].(string); ok && s != "" {
			return s
		}
	}
	return text
}
