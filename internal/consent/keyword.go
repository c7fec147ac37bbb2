package consent

import "strings"

// Keyword is the classification of an inbound message body.
type Keyword string

const (
	KeywordStop Keyword = "stop"
	KeywordHelp Keyword = "help"
	KeywordNone Keyword = "none"
)

var (
	stopKeywords = []string{"stop", "stopall", "unsubscribe", "cancel", "end", "quit"}
	helpKeywords = []string{"help", "info"}
)

// ClassifyKeyword classifies a message body as a STOP request, a HELP
// request, or neither. Matching is exact against the trimmed, lower-cased
// body: "please stop" is not a STOP. STOP wins over HELP.
func ClassifyKeyword(body string) Keyword {
	normalized := strings.ToLower(strings.TrimSpace(body))
	if normalized == "" {
		return KeywordNone
	}

	for _, kw := range stopKeywords {
		if normalized == kw {
			return KeywordStop
		}
	}

	for _, kw := range helpKeywords {
		if normalized == kw {
			return KeywordHelp
		}
	}

	return KeywordNone
}
