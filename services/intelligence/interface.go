package intelligence

import "context"

// TextGenerator produces a single reply for a fully rendered prompt. The
// implementation is expected to fail opaquely; callers degrade to a fallback
// reply rather than surfacing the error.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
