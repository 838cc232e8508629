package kirby

import (
	"encoding/json"
	"strings"
)

// Output markers delimit a JSON payload inside otherwise human-readable CLI
// output. The helper commands installed into site/commands print exactly one
// pair; changing either value breaks every installed helper.
const (
	MarkerStart = "<<<KIRBY_MCP_JSON>>>"
	MarkerEnd   = "<<<END_KIRBY_MCP_JSON>>>"
)

// ExtractJSON returns the value encoded between the first MarkerStart and the
// first MarkerEnd after it. found is false when either marker is missing or
// the body is blank. A body that is not valid JSON yields found=true and a
// *PayloadError, so callers can tell a corrupt payload from a missing one.
// Later marker pairs are ignored.
func ExtractJSON(stdout string) (value any, found bool, err error) {
	body, ok := markedBody(stdout)
	if !ok {
		return nil, false, nil
	}

	if err := json.Unmarshal([]byte(body), &value); err != nil {
		return nil, true, &PayloadError{Body: body, Err: err}
	}
	return value, true, nil
}

// DecodeJSON is ExtractJSON for callers that know the payload shape.
func DecodeJSON(stdout string, v any) (found bool, err error) {
	body, ok := markedBody(stdout)
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal([]byte(body), v); err != nil {
		return true, &PayloadError{Body: body, Err: err}
	}
	return true, nil
}

func markedBody(stdout string) (string, bool) {
	_, rest, ok := strings.Cut(stdout, MarkerStart)
	if !ok {
		return "", false
	}

	body, _, ok := strings.Cut(rest, MarkerEnd)
	if !ok {
		return "", false
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return "", false
	}
	return body, true
}
