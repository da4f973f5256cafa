// Safety-classification backend: a single binary "flagged" signal for text
// and/or an image reference. The moderation planner short-circuits to a
// rejection when content is flagged.
package classifier

import (
	"context"
)

type Classifier interface {
	// Flagged reports whether the given text and/or image (either may be
	// empty) violates the safety policy of the backing model.
	Flagged(ctx context.Context, text, image string) (bool, error)
}
