package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
)

// QuestionInput is a question as submitted by an author, before
// kind-specific validation.
type QuestionInput struct {
	Description string          `json:"description"`
	Media       string          `json:"media,omitempty"`
	Type        string          `json:"type"`
	Options     []string        `json:"options,omitempty"`
	Answer      json.RawMessage `json:"answer"`
}

// QuestionValidator checks the options/answer shape for one question kind
// and produces the typed answer variant.
type QuestionValidator interface {
	Validate(in QuestionInput) (Answer, error)
}

// ValidatorFunc adapts a function to the QuestionValidator interface.
type ValidatorFunc func(in QuestionInput) (Answer, error)

func (f ValidatorFunc) Validate(in QuestionInput) (Answer, error) { return f(in) }

// Registry maps question kinds to their validators. New kinds register
// themselves; the dispatcher never changes.
type Registry struct {
	validators map[QuestionType]QuestionValidator
}

func NewRegistry() *Registry {
	return &Registry{validators: make(map[QuestionType]QuestionValidator)}
}

// Register binds a validator to a question kind, replacing any previous
// binding for the same kind.
func (r *Registry) Register(kind QuestionType, v QuestionValidator) {
	r.validators[kind] = v
}

// Kinds lists the registered question kinds in stable order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.validators))
	for kind := range r.validators {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	return kinds
}

// Validate dispatches on the type tag and returns an immutable Question
// or a structured error naming the violated field.
func (r *Registry) Validate(in QuestionInput) (Question, error) {
	if in.Media != "" {
		u, err := url.Parse(in.Media)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return Question{}, &ValidationError{Field: "media", Message: "must be an absolute http(s) URL"}
		}
	}

	v, ok := r.validators[QuestionType(in.Type)]
	if !ok {
		return Question{}, &UnknownQuestionTypeError{Type: in.Type, Accepted: r.Kinds()}
	}
	answer, err := v.Validate(in)
	if err != nil {
		return Question{}, err
	}

	var options []string
	if in.Options != nil {
		options = append(options, in.Options...)
	}
	return Question{
		Description: in.Description,
		Media:       in.Media,
		Type:        QuestionType(in.Type),
		Options:     options,
		Answer:      answer,
	}, nil
}

// ValidateQuestions validates an ordered question list, attributing
// errors to their position in the list.
func (r *Registry) ValidateQuestions(inputs []QuestionInput) ([]Question, error) {
	questions := make([]Question, 0, len(inputs))
	for i, in := range inputs {
		q, err := r.Validate(in)
		if err != nil {
			return nil, prefixQuestionError(i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func prefixQuestionError(i int, err error) error {
	switch e := err.(type) {
	case *ValidationError:
		return &ValidationError{
			Field:   fmt.Sprintf("questions[%d].%s", i, e.Field),
			Message: e.Message,
		}
	case *AnswerOutOfRangeError:
		return &AnswerOutOfRangeError{
			Field:   fmt.Sprintf("questions[%d].%s", i, e.Field),
			Value:   e.Value,
			Options: e.Options,
		}
	}
	return err
}

// DefaultRegistry validates the built-in question kinds.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(QuestionText, ValidatorFunc(validateText))
	DefaultRegistry.Register(QuestionRadio, ValidatorFunc(validateRadio))
	DefaultRegistry.Register(QuestionCheckbox, ValidatorFunc(validateCheckbox))
}

func validateText(in QuestionInput) (Answer, error) {
	if in.Options != nil {
		return nil, &ValidationError{Field: "options", Message: "text questions must not carry options"}
	}
	var s string
	if err := json.Unmarshal(in.Answer, &s); err != nil {
		return nil, &ValidationError{Field: "answer", Message: "text answer must be a string"}
	}
	return TextAnswer(s), nil
}

func validateRadio(in QuestionInput) (Answer, error) {
	if len(in.Options) == 0 {
		return nil, &ValidationError{Field: "options", Message: "radio questions require a non-empty options list"}
	}
	var n int
	if err := json.Unmarshal(in.Answer, &n); err != nil {
		return nil, &ValidationError{Field: "answer", Message: "radio answer must be a single integer"}
	}
	if n < 0 || n >= len(in.Options) {
		return nil, &AnswerOutOfRangeError{Field: "answer", Value: n, Options: len(in.Options)}
	}
	return RadioAnswer(n), nil
}

func validateCheckbox(in QuestionInput) (Answer, error) {
	if len(in.Options) == 0 {
		return nil, &ValidationError{Field: "options", Message: "checkbox questions require a non-empty options list"}
	}
	var indices []int
	if err := json.Unmarshal(in.Answer, &indices); err != nil {
		return nil, &ValidationError{Field: "answer", Message: "checkbox answer must be a list of integers"}
	}
	for _, n := range indices {
		if n < 0 || n >= len(in.Options) {
			return nil, &AnswerOutOfRangeError{Field: "answer", Value: n, Options: len(in.Options)}
		}
	}
	return CheckboxAnswer(indices), nil
}
