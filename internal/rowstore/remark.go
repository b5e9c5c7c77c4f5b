package rowstore

import (
	"strings"
	"unicode"

	"rmtl/internal/domain"
)

var failPhrases = []string{"not working", "not ok", "fail", "failed", "defective", "burnt", "burned"}

// InferResult guesses a verdict from free-text remarks. Failure phrases take
// precedence over "ok" so that "not ok" never reads as a pass.
func InferResult(remark string) (domain.TestResult, bool) {
	words := strings.FieldsFunc(strings.ToLower(remark), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) == 0 {
		return domain.TestResultNone, false
	}
	normalized := " " + strings.Join(words, " ") + " "
	for _, p := range failPhrases {
		if strings.Contains(normalized, " "+p+" ") {
			return domain.TestResultFail, true
		}
	}
	for _, w := range words {
		if w == "ok" || w == "okay" || w == "pass" || w == "passed" {
			return domain.TestResultPass, true
		}
	}
	return domain.TestResultNone, false
}
