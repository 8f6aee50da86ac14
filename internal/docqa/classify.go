package docqa

import "strings"

// QuestionType drives prompt selection in the synthesizer.
type QuestionType string

const (
	QuestionFactual     QuestionType = "factual"
	QuestionAnalytical  QuestionType = "analytical"
	QuestionComparative QuestionType = "comparative"
	QuestionSummary     QuestionType = "summarization"
	QuestionGeneral     QuestionType = "general"
)

var (
	factualPrefixes   = []string{"what is", "what are", "who is", "who was", "when", "where", "how many", "how much"}
	analyticalCues    = []string{"why", "how does", "how do", "explain", "analyze", "what causes"}
	comparativeCues   = []string{"compare", "contrast", "difference between", "differences between"}
	summarizationCues = []string{"summarize", "summary", "overview", "main points", "key points"}
	comparativeTokens = []string{"vs", "versus"}
)

// Classify buckets a question by its lexical cues. Deterministic and
// case-insensitive; unknown shapes fall back to general.
func Classify(question string) QuestionType {
	q := strings.ToLower(strings.TrimSpace(question))
	if q == "" {
		return QuestionGeneral
	}

	for _, cue := range comparativeCues {
		if strings.Contains(q, cue) {
			return QuestionComparative
		}
	}
	// "vs"/"versus" must stand alone as words; substring matching would
	// fire on words like "conversion".
	for _, tok := range strings.Fields(strings.Map(stripPunct, q)) {
		for _, cue := range comparativeTokens {
			if tok == cue {
				return QuestionComparative
			}
		}
	}

	for _, cue := range summarizationCues {
		if strings.Contains(q, cue) {
			return QuestionSummary
		}
	}

	for _, prefix := range factualPrefixes {
		if strings.HasPrefix(q, prefix) {
			return QuestionFactual
		}
	}

	for _, cue := range analyticalCues {
		if strings.HasPrefix(q, cue) || strings.Contains(q, " "+cue+" ") {
			return QuestionAnalytical
		}
	}

	return QuestionGeneral
}

func stripPunct(r rune) rune {
	switch r {
	case '.', ',', '?', '!', ';', ':':
		return ' '
	}
	return r
}
