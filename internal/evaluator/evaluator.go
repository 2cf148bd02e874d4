// Package evaluator checks submitted answers against question content.
package evaluator

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"negeri-quiz/internal/domain"
)

// Evaluate reports whether answer is correct for q. It never errors: unknown
// kinds and answers of the wrong shape are simply incorrect.
func Evaluate(q domain.Question, answer domain.AnswerValue) bool {
	switch q.Kind {
	case domain.KindMultipleChoice, domain.KindTrueFalse:
		return answer.Kind() != domain.AnswerNone && answer.Equal(q.CorrectAnswer)
	case domain.KindFillBlank:
		return fillBlank(q, answer)
	case domain.KindMatching:
		return matching(q, answer)
	default:
		return false
	}
}

func fillBlank(q domain.Question, answer domain.AnswerValue) bool {
	submitted, ok := answer.Text()
	if !ok {
		return false
	}
	submitted = normalize(submitted, q.CaseSensitive)

	if correct, ok := q.CorrectAnswer.Text(); ok && normalize(correct, q.CaseSensitive) == submitted {
		return true
	}
	for _, alt := range q.AcceptableAnswers {
		if normalize(alt, q.CaseSensitive) == submitted {
			return true
		}
	}
	return false
}

func normalize(s string, caseSensitive bool) string {
	s = strings.TrimSpace(s)
	if caseSensitive {
		return s
	}
	// Caser values keep state, so one per call.
	return cases.Lower(language.Und).String(s)
}

func matching(q domain.Question, answer domain.AnswerValue) bool {
	submitted, ok := answer.List()
	if !ok {
		return false
	}
	got := toSet(submitted)
	want := toSet(q.CorrectAnswers)
	if len(got) != len(want) {
		return false
	}
	for item := range want {
		if _, ok := got[item]; !ok {
			return false
		}
	}
	return true
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
