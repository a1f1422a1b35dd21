package auth

import "github.com/gofiber/fiber/v2"

// Stage is one authentication or authorization step. A nil return allows the
// request to continue; an error denies it and is rendered by the error boundary.
// Stages never write the response themselves.
type Stage func(c *fiber.Ctx) error

// Pipeline is an ordered list of stages run ahead of a terminal handler.
type Pipeline struct {
	stages []Stage
}

// Compose builds a pipeline that runs stages strictly left to right.
func Compose(stages ...Stage) Pipeline {
	return Pipeline{stages: append([]Stage(nil), stages...)}
}

// With returns a new pipeline with extra stages appended.
func (p Pipeline) With(stages ...Stage) Pipeline {
	combined := make([]Stage, 0, len(p.stages)+len(stages))
	combined = append(combined, p.stages...)
	combined = append(combined, stages...)
	return Pipeline{stages: combined}
}

// Then returns a handler running every stage and, if all allow, terminal.
// The first denying stage short-circuits.
func (p Pipeline) Then(terminal fiber.Handler) fiber.Handler {
	stages := p.stages
	return func(c *fiber.Ctx) error {
		for _, stage := range stages {
			if err := stage(c); err != nil {
				return err
			}
		}
		return terminal(c)
	}
}
