package generator

import (
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
)

// ErrNoImage means the service answered but none of the returned parts carried
// inline image bytes. Distinct from a transport failure so callers can keep
// the previous cover image.
var ErrNoImage = errors.New("service produced no image data")

// GenerationError wraps a failed structured generation: transport error, empty
// completion, or a completion that could not be recovered into an Article.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SuggestionParseError reports that the suggestion response carried no usable
// JSON array. It travels alongside the (empty) result rather than replacing
// it, so the UI can offer a retry instead of a hard failure.
type SuggestionParseError struct {
	Raw string
}

func (e *SuggestionParseError) Error() string {
	return "no parsable suggestion array in response"
}

// IsAuthError reports whether err came back from the service as a credential
// or authorization rejection. Those need re-authentication, not a retry.
func IsAuthError(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == 401 || apierr.StatusCode == 403
	}
	return false
}
