package domain

// QuestionKind is the discriminant of the closed question variant set.
type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multipleChoice"
	KindTrueFalse      QuestionKind = "trueFalse"
	KindFillBlank      QuestionKind = "fillBlank"
	KindMatching       QuestionKind = "matching"
)

// Question is immutable reference content. Which fields matter depends on Kind:
//   - multipleChoice: Options (4) and a text CorrectAnswer
//   - trueFalse: a boolean CorrectAnswer
//   - fillBlank: a text CorrectAnswer, AcceptableAnswers and CaseSensitive
//   - matching: Options (9) and CorrectAnswers
type Question struct {
	ID                string       `json:"id" yaml:"id"`
	Kind              QuestionKind `json:"type" yaml:"type"`
	Prompt            string       `json:"question" yaml:"question"`
	Options           []string     `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectAnswer     AnswerValue  `json:"correctAnswer,omitempty" yaml:"correctAnswer,omitempty"`
	CorrectAnswers    []string     `json:"correctAnswers,omitempty" yaml:"correctAnswers,omitempty"`
	AcceptableAnswers []string     `json:"acceptableAnswers,omitempty" yaml:"acceptableAnswers,omitempty"`
	CaseSensitive     bool         `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`
	Explanation       string       `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Region is one playable state of the map together with its question bank.
type Region struct {
	ID           string     `json:"id" yaml:"id"`
	Name         string     `json:"name" yaml:"name"`
	Capital      string     `json:"capital,omitempty" yaml:"capital,omitempty"`
	TimerSeconds *int       `json:"timerSeconds,omitempty" yaml:"timerSeconds,omitempty"`
	Questions    []Question `json:"questions" yaml:"questions"`
}

// Question returns the region question with the given id.
func (r Region) Question(id string) (Question, bool) {
	for _, q := range r.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
