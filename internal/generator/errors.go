package generator

import (
	"fmt"

	"emojiplot/internal/services"
)

// Stage names a step of the generation chain.
type Stage string

const (
	StagePlot     Stage = "plot"
	StageEmoji    Stage = "emoji"
	StageValidate Stage = "validate"
)

// Error reports a failed generation for one title.
type Error struct {
	Title string
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generate %q: %s stage: %v", e.Title, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, services.ErrGeneration) match any generation failure.
func (e *Error) Is(target error) bool {
	return target == services.ErrGeneration
}
