package llm

import "context"

// Completer is a single-shot language model call. Complete is used for
// free-form replies, CompleteJSON for prompts whose contract is a JSON
// object (deterministic settings, no prose).
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// Respond runs Complete and degrades a transport failure into a readable
// description string. Callers that must always produce text use this
// instead of handling the error themselves.
func Respond(ctx context.Context, c Completer, prompt string) string {
	text, err := c.Complete(ctx, prompt)
	if err != nil {
		return "Error from model: " + err.Error()
	}
	return text
}
