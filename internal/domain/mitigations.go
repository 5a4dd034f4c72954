package domain

import "encoding/json"

// The mitigation denylist is persisted as a JSON string array. The
// engine round-trips it losslessly and never interprets the entries.

func MarshalMitigations(mitigations []string) (string, error) {
	if mitigations == nil {
		mitigations = []string{}
	}

	b, err := json.Marshal(mitigations)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func UnmarshalMitigations(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}

	var mitigations []string
	if err := json.Unmarshal([]byte(raw), &mitigations); err != nil {
		return nil, err
	}

	return mitigations, nil
}
