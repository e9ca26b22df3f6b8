package completion

import "context"

// Fallback is returned in place of an empty model reply.
const Fallback = "Sorry, something went wrong."

// Client forwards a single text prompt to a generation backend and returns
// the reply verbatim. Implementations must return Fallback rather than an
// empty string when the backend produced no content.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
