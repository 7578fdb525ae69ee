package generativeAI

import "strings"

// CleanJSONResponse strips markdown fences and surrounding prose from a
// model answer and returns the outermost JSON object or array. The input is
// returned trimmed when no JSON value is found.
func CleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	first := strings.IndexAny(response, "{[")
	if first == -1 {
		return response
	}
	closer := "}"
	if response[first] == '[' {
		closer = "]"
	}
	last := strings.LastIndex(response, closer)
	if last <= first {
		return response
	}
	return strings.TrimSpace(response[first : last+1])
}
