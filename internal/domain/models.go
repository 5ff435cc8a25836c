package domain

// Quiz is the root aggregate: a quiz and its embedded ordered questions.
// JSON field names are the persisted document names.
type Quiz struct {
	ID          string     `json:"_id,omitempty"`
	PostID      int        `json:"post_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

// MaxScore is the highest total score an attempt at this quiz can reach.
func (q Quiz) MaxScore() int { return len(q.Questions) }

// QuizInput is the authoring payload for quiz creation and full update.
type QuizInput struct {
	Name        string          `json:"name"`
	PostID      int             `json:"post_id"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions"`
}

// QuestionView is a question with its answer withheld, safe to show to
// quiz takers.
type QuestionView struct {
	Description string       `json:"description"`
	Media       string       `json:"media,omitempty"`
	Type        QuestionType `json:"type"`
	Options     []string     `json:"options,omitempty"`
}

// QuizView is the answers-stripped form of a quiz.
type QuizView struct {
	ID          string         `json:"_id"`
	PostID      int            `json:"post_id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Questions   []QuestionView `json:"questions"`
}

// View strips the answer key from the quiz.
func (q Quiz) View() QuizView {
	questions := make([]QuestionView, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = QuestionView{
			Description: question.Description,
			Media:       question.Media,
			Type:        question.Type,
			Options:     question.Options,
		}
	}
	return QuizView{
		ID:          q.ID,
		PostID:      q.PostID,
		Name:        q.Name,
		Description: q.Description,
		Questions:   questions,
	}
}

// AttemptAnswer is a single submitted answer value. Its shape is not
// checked against the question at submission time; a mismatched value
// scores as incorrect during the pairwise walk.
type AttemptAnswer struct {
	Value any `json:"value"`
}

// AttemptInput is a candidate attempt as submitted by a quiz taker.
type AttemptInput struct {
	User    string          `json:"user"`
	QuizID  string          `json:"quiz_id"`
	Answers []AttemptAnswer `json:"answers"`
}

// ScoredAnswer pairs a submitted value with its scoring outcome.
type ScoredAnswer struct {
	Value     any  `json:"value"`
	IsCorrect bool `json:"is_correct"`
}

// Attempt is one user's scored submission against a quiz snapshot.
// Created once by the scorer, immutable thereafter.
type Attempt struct {
	ID         string         `json:"_id,omitempty"`
	User       string         `json:"user"`
	QuizID     string         `json:"quiz_id"`
	Answers    []ScoredAnswer `json:"answers"`
	TotalScore int            `json:"total_score"`
}

// AttemptResult is the live-feed summary of a newly scored attempt.
type AttemptResult struct {
	AttemptID  string `json:"attempt_id"`
	User       string `json:"user"`
	TotalScore int    `json:"total_score"`
	MaxScore   int    `json:"max_score"`
}
