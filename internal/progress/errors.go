package progress

import "errors"

var (
	// ErrMissingUserID indicates a required user id was absent.
	ErrMissingUserID = errors.New("user id is required")
	// ErrMissingQuestionID indicates an answer or review arrived without a question id.
	ErrMissingQuestionID = errors.New("question id is required")
	// ErrInvalidDifficulty indicates an unsupported difficulty label.
	ErrInvalidDifficulty = errors.New("difficulty must be one of easy, medium, hard")
)
