package compose

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

type draftPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// parseDraftPayload recovers the draft JSON object from a raw model response.
// Models occasionally wrap the object in code fences, prepend prose, or emit
// slightly broken JSON; try progressively harder before giving up.
func parseDraftPayload(raw string) (draftPayload, error) {
	raw = stripCodeFences(strings.TrimSpace(raw))

	var payload draftPayload
	if err := json.Unmarshal([]byte(raw), &payload); err == nil {
		return payload, nil
	}

	// Narrow to the outermost object before repairing.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			return payload, nil
		}
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return draftPayload{}, errors.New("model response is not a JSON object")
	}
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return draftPayload{}, errors.New("model response is not a JSON object")
	}

	return payload, nil
}

func stripCodeFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
