package llm

import (
	"fmt"
	"strings"
)

// Roster is the ordered list of candidate models. Order encodes preference:
// the client always starts with the first entry and falls back down the list.
// A roster is immutable once built; changing it means redeploying config.
type Roster struct {
	models []string
}

func NewRoster(models []string) (*Roster, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("model roster must contain at least one model")
	}

	seen := make(map[string]bool, len(models))
	for _, model := range models {
		if strings.TrimSpace(model) == "" {
			return nil, fmt.Errorf("model roster contains a blank entry")
		}
		if seen[model] {
			return nil, fmt.Errorf("duplicate model %q in roster", model)
		}
		seen[model] = true
	}

	return &Roster{models: append([]string(nil), models...)}, nil
}

// Models returns the candidates in priority order.
func (r *Roster) Models() []string {
	return append([]string(nil), r.models...)
}

func (r *Roster) Len() int {
	return len(r.models)
}
