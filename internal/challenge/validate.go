package challenge

import "strings"

// ValidateAnswer reports whether a submitted answer matches one of the
// accepted variants. The accepted answer is a ";"-separated list and the
// comparison is case-insensitive. Nothing is trimmed: whitespace in a
// variant is part of the answer, and changing that would silently
// change which submissions count.
func ValidateAnswer(submitted, accepted string) bool {
	if accepted == "" {
		return false
	}

	submitted = strings.ToLower(submitted)
	for _, variant := range strings.Split(accepted, ";") {
		if submitted == strings.ToLower(variant) {
			return true
		}
	}

	return false
}
