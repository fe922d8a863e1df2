package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON extracts the first balanced top-level JSON object from a model
// response that may contain surrounding prose or markdown fences. Only
// objects are extracted; there is no partial salvage of truncated output.
// The same input always yields the same span.
func ExtractJSON(response string) (string, error) {
	jsonStr, ok := extractBalancedObject(response)
	if !ok {
		return "", NewError(ErrorTypeExtraction, "no JSON object found in response", false, nil)
	}
	if !json.Valid([]byte(jsonStr)) {
		return "", NewError(ErrorTypeExtraction, "extracted span is not valid JSON", false, nil)
	}
	return jsonStr, nil
}

// extractBalancedObject finds the first balanced {...} span. It counts brace
// depth while tracking string literals and escapes so braces inside strings
// do not affect the count.
func extractBalancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if c == '\\' && inString {
			escaped = true
			continue
		}

		if c == '"' {
			inString = !inString
			continue
		}

		if inString {
			continue
		}

		if c == '{' {
			depth++
		} else if c == '}' {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// ParseJSONResponse extracts JSON from a response and unmarshals it into the target.
func ParseJSONResponse[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return result, err
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, NewError(ErrorTypeExtraction, fmt.Sprintf("unmarshal JSON: %v", err), false, err)
	}

	return result, nil
}
