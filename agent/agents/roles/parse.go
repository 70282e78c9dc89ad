package roles

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	requestIDPattern  = regexp.MustCompile(`LR-[0-9a-fA-F-]{8,}`)
	severityPattern   = regexp.MustCompile(`(?:severity|level|rating)\s*[:= ]?\s*(\d{1,2})`)
	keyValuePattern   = regexp.MustCompile(`(\w+)\s*=\s*([\w./-]+)`)
	departmentPattern = regexp.MustCompile(`(?:for|in)\s+(?:the\s+)?([a-zA-Z][\w-]*)(?:\s+department)?`)
)

var symptomWords = []string{
	"headache", "migraine", "fatigue", "nausea", "stress", "anxiety",
	"insomnia", "pain", "dizziness", "focus",
}

func extractRequestID(text string) string {
	return requestIDPattern.FindString(text)
}

func extractSeverity(text string) (int, bool) {
	match := severityPattern.FindStringSubmatch(strings.ToLower(text))
	if match == nil {
		return 0, false
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 || n > 10 {
		return 0, false
	}
	return n, true
}

func extractSymptom(text string) string {
	lowered := strings.ToLower(text)
	for _, word := range symptomWords {
		if strings.Contains(lowered, word) {
			return word
		}
	}
	return ""
}

func extractKeyValues(text string) map[string]string {
	out := make(map[string]string)
	for _, match := range keyValuePattern.FindAllStringSubmatch(text, -1) {
		out[strings.ToLower(match[1])] = match[2]
	}
	return out
}

// extractDepartment pulls a department name out of phrases like "trends for
// engineering" or "in the sales department". Empty means org-wide.
func extractDepartment(text string) string {
	match := departmentPattern.FindStringSubmatch(strings.ToLower(text))
	if match == nil {
		return ""
	}
	candidate := match[1]
	switch candidate {
	case "the", "my", "our", "all", "this":
		return ""
	}
	return candidate
}

func containsAny(text string, words ...string) bool {
	lowered := strings.ToLower(text)
	for _, word := range words {
		if strings.Contains(lowered, word) {
			return true
		}
	}
	return false
}
