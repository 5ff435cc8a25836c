package domain

import (
	"encoding/json"
	"fmt"
)

// QuestionType discriminates the answer shape of a question.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
)

// Answer is the type-dependent correct answer of a question.
type Answer interface {
	Kind() QuestionType
	// Matches compares a submitted value, as decoded from JSON, against
	// the correct answer. A value of the wrong shape or range is simply
	// not a match; Matches never fails.
	Matches(value any) bool
	value() any
}

// TextAnswer is the correct answer of a free-text question.
type TextAnswer string

func (TextAnswer) Kind() QuestionType { return QuestionText }

func (a TextAnswer) Matches(v any) bool {
	s, ok := v.(string)
	return ok && s == string(a)
}

func (a TextAnswer) value() any { return string(a) }

// RadioAnswer is the index of the single correct option.
type RadioAnswer int

func (RadioAnswer) Kind() QuestionType { return QuestionRadio }

func (a RadioAnswer) Matches(v any) bool {
	n, ok := asIndex(v)
	return ok && n == int(a)
}

func (a RadioAnswer) value() any { return int(a) }

// CheckboxAnswer is a set of correct option indices. Equality ignores
// order and duplicates: [1,3] and [3,1] are the same answer.
type CheckboxAnswer []int

func (CheckboxAnswer) Kind() QuestionType { return QuestionCheckbox }

func (a CheckboxAnswer) Matches(v any) bool {
	indices, ok := asIndexSlice(v)
	if !ok {
		return false
	}
	want := make(map[int]struct{}, len(a))
	for _, i := range a {
		want[i] = struct{}{}
	}
	got := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if _, ok := want[i]; !ok {
			return false
		}
		got[i] = struct{}{}
	}
	return len(got) == len(want)
}

func (a CheckboxAnswer) value() any { return []int(a) }

// asIndex accepts the integer shapes a JSON decode can produce.
func asIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

func asIndexSlice(v any) ([]int, bool) {
	switch vs := v.(type) {
	case []int:
		return vs, true
	case []any:
		indices := make([]int, 0, len(vs))
		for _, item := range vs {
			n, ok := asIndex(item)
			if !ok {
				return nil, false
			}
			indices = append(indices, n)
		}
		return indices, true
	}
	return nil, false
}

// Question is one entry of a quiz, immutable once built by the
// validator registry. Options is nil for text questions.
type Question struct {
	Description string
	Media       string
	Type        QuestionType
	Options     []string
	Answer      Answer
}

// questionDoc is the persisted form of a Question; the answer field is
// the raw variant keyed by the type tag.
type questionDoc struct {
	Description string          `json:"description"`
	Media       string          `json:"media,omitempty"`
	Type        QuestionType    `json:"type"`
	Options     []string        `json:"options,omitempty"`
	Answer      json.RawMessage `json:"answer"`
}

func (q Question) MarshalJSON() ([]byte, error) {
	if q.Answer == nil {
		return nil, fmt.Errorf("question %q has no answer", q.Description)
	}
	answer, err := json.Marshal(q.Answer.value())
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionDoc{
		Description: q.Description,
		Media:       q.Media,
		Type:        q.Type,
		Options:     q.Options,
		Answer:      answer,
	})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var doc questionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	answer, err := decodeAnswer(doc.Type, doc.Answer)
	if err != nil {
		return err
	}
	*q = Question{
		Description: doc.Description,
		Media:       doc.Media,
		Type:        doc.Type,
		Options:     doc.Options,
		Answer:      answer,
	}
	return nil
}

// decodeAnswer decodes the stored answer variant keyed by the question
// type. Stored documents were validated on write, so this only guards
// against shape drift.
func decodeAnswer(typ QuestionType, raw json.RawMessage) (Answer, error) {
	switch typ {
	case QuestionText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("text answer: %w", err)
		}
		return TextAnswer(s), nil
	case QuestionRadio:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("radio answer: %w", err)
		}
		return RadioAnswer(n), nil
	case QuestionCheckbox:
		var indices []int
		if err := json.Unmarshal(raw, &indices); err != nil {
			return nil, fmt.Errorf("checkbox answer: %w", err)
		}
		return CheckboxAnswer(indices), nil
	}
	return nil, fmt.Errorf("unknown question type %q", typ)
}
