package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"tripsync/internal/domain"
)

// parsePatch turns field=value arguments into a Patch. Values that parse as
// JSON (numbers, booleans, arrays, quoted strings) keep their JSON type;
// anything else is taken as a plain string.
func parsePatch(args []string) (domain.Patch, error) {
	patch := domain.Patch{}
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("bad field %q: want name=value", arg)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		patch[field] = v
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("nothing to update: give at least one name=value")
	}
	return patch, nil
}
