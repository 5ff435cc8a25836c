package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuizNotFound indicates the referenced quiz document is absent.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound indicates the referenced attempt document is absent.
	ErrAttemptNotFound = errors.New("attempt not found")
)

// ValidationError reports a malformed or semantically invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UnknownQuestionTypeError is returned when a question carries a type tag
// no validator has been registered for.
type UnknownQuestionTypeError struct {
	Type     string
	Accepted []string
}

func (e *UnknownQuestionTypeError) Error() string {
	return fmt.Sprintf("question type %q is not in list: [%s]", e.Type, strings.Join(e.Accepted, ", "))
}

// AnswerOutOfRangeError is returned when a correct-answer index does not
// point into the question's options.
type AnswerOutOfRangeError struct {
	Field   string
	Value   int
	Options int
}

func (e *AnswerOutOfRangeError) Error() string {
	return fmt.Sprintf("%s: answer value %d is out of range for %d options", e.Field, e.Value, e.Options)
}

// AnswerCountMismatchError is returned when a submitted attempt does not
// carry exactly one answer per quiz question.
type AnswerCountMismatchError struct {
	Want int
	Got  int
}

func (e *AnswerCountMismatchError) Error() string {
	return fmt.Sprintf("attempt has %d answers, quiz has %d questions", e.Got, e.Want)
}

// DuplicatePostIDError is returned when a quiz with the same post id
// already exists.
type DuplicatePostIDError struct {
	PostID int
}

func (e *DuplicatePostIDError) Error() string {
	return fmt.Sprintf("there is a quiz with post id %d already", e.PostID)
}

// StoreError classifies a transient store failure (connectivity,
// transaction abort). The underlying error is kept for logs and never
// shown to clients verbatim.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
