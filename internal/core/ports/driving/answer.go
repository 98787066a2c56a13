package driving

import (
	"context"

	"github.com/custodia-labs/lexsearch/internal/core/domain"
)

// Answerer turns a user question into a grounded natural-language answer.
type Answerer interface {
	// Ask retrieves the chunks relevant to the question, builds a prompt
	// from them and asks the language model. The returned answer carries
	// the source references of the chunks it was grounded on.
	Ask(ctx context.Context, question string) (domain.Answer, error)
}
