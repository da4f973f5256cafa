// Function-selecting completion backend: given a system prompt (action
// catalogue plus rule corpus) and the user's content, returns free-form text
// expected to contain a JSON array of planned actions.
package completion

import (
	"context"
)

// Request is a minimal chat-style completion request: ordered system prompts
// followed by one user message.
type Request struct {
	System []string
	User   string
}

type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
