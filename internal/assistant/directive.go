package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	directiveMarker    = "EXECUTE_FUNCTION:"
	directiveSeparator = " | "
)

// Directive is a function-call instruction embedded in a model response.
type Directive struct {
	Function string
	Params   map[string]string
}

// ParseDirective inspects a model response. A response is a directive if
// and only if it begins with the EXECUTE_FUNCTION: marker; anything else
// is plain conversational text (isDirective false, no error). The text
// after the marker is split on the first " | " into a function name and
// an optional JSON object of string parameters. A directive with an
// unparseable payload returns isDirective true and an error.
func ParseDirective(response string) (*Directive, bool, error) {
	if !strings.HasPrefix(response, directiveMarker) {
		return nil, false, nil
	}

	rest := strings.TrimSpace(strings.TrimPrefix(response, directiveMarker))

	name := rest
	payload := ""
	if idx := strings.Index(rest, directiveSeparator); idx >= 0 {
		name = rest[:idx]
		payload = rest[idx+len(directiveSeparator):]
	}
	name = strings.TrimSpace(name)

	params := map[string]string{}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &params); err != nil {
			return nil, true, fmt.Errorf("invalid function parameters: %w", err)
		}
	}

	return &Directive{Function: name, Params: params}, true, nil
}
