// Package session holds the live article and drives generation, extension,
// image and share-link operations as explicit state transitions.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/RobSonPL/Blog-Ai/generator"
	"github.com/RobSonPL/Blog-Ai/history"
	"github.com/RobSonPL/Blog-Ai/share"
)

// State is the session's position in Idle → Generating → Ready ⇄ Extending.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
	StateExtending  State = "extending"
)

// ErrInvalidState marks an operation rejected by its state precondition, as
// opposed to one that ran and failed. Callers map it to a conflict, not to
// the session's displayed error.
var ErrInvalidState = errors.New("operation not valid in current state")

// FailureKind classifies the last error for display. Credential problems need
// re-authentication, everything else a retry.
type FailureKind string

const (
	FailureAuth       FailureKind = "auth"
	FailureGeneration FailureKind = "generation"
	FailureImage      FailureKind = "image"
)

// Failure is the error value carried back to the presentation layer.
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string { return f.Err.Error() }

func (f *Failure) Unwrap() error { return f.Err }

func classify(kind FailureKind, err error) *Failure {
	if generator.IsAuthError(err) {
		kind = FailureAuth
	}
	return &Failure{Kind: kind, Err: err}
}

// Session is the single writer of the live article. Collaborators only ever
// see copies.
type Session struct {
	mu       sync.Mutex
	state    State
	article  *generator.Article
	category generator.Category
	logo     string
	lastErr  *Failure

	// Request tokens: an install step whose token no longer matches was
	// superseded and its response is dropped.
	genToken uuid.UUID
	extToken uuid.UUID

	client  *generator.Client
	history *history.Store
	logger  *slog.Logger
}

func New(client *generator.Client, hist *history.Store, logger *slog.Logger) (*Session, error) {
	if client == nil {
		return nil, errors.New("generation client is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		state:   StateIdle,
		client:  client,
		history: hist,
		logger:  logger,
	}, nil
}

// View is a read-only copy of the session for the presentation layer.
type View struct {
	State    State
	Article  *generator.Article
	Category generator.Category
	Logo     string
	Failure  *Failure
}

func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{State: s.state, Category: s.category, Logo: s.logo, Failure: s.lastErr}
	if s.article != nil {
		copied := *s.article
		v.Article = &copied
	}
	return v
}

// StartGeneration discards whatever is current and generates a fresh article.
// Valid from Idle, Ready, or Generating (a newer request supersedes the one in
// flight; the stale response is dropped when it lands). On failure the session
// returns to Idle carrying a classified error.
func (s *Session) StartGeneration(ctx context.Context, topic string, category generator.Category, length generator.Length) error {
	s.mu.Lock()
	if s.state == StateExtending {
		s.mu.Unlock()
		return fmt.Errorf("%w: cannot start a generation while extending", ErrInvalidState)
	}
	token := uuid.New()
	s.genToken = token
	s.state = StateGenerating
	s.lastErr = nil
	s.article = nil
	s.mu.Unlock()

	art, err := s.client.GenerateArticle(ctx, topic, category, length)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.genToken != token {
		// A newer generation (or a share-link load) took over.
		s.logger.Debug("discarding stale generation response", "topic", topic)
		return nil
	}
	if err != nil {
		s.state = StateIdle
		s.lastErr = classify(FailureGeneration, err)
		return s.lastErr
	}
	s.article = &art
	s.category = category
	s.state = StateReady
	if s.history != nil {
		s.history.RecordIfAbsent(art, string(category), "")
	}
	return nil
}

// RequestContinuation extends the body in place. Valid only in Ready. The new
// text is appended after a blank line; the article identity is unchanged, so
// history does not grow a duplicate entry. Failure keeps the article intact.
func (s *Session) RequestContinuation(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady || s.article == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no article ready to extend", ErrInvalidState)
	}
	token := uuid.New()
	s.extToken = token
	s.state = StateExtending
	s.lastErr = nil
	title := s.article.Title
	body := s.article.Body
	s.mu.Unlock()

	text, err := s.client.ContinueArticle(ctx, title, body)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateExtending || s.extToken != token {
		return nil
	}
	s.state = StateReady
	if err != nil {
		s.lastErr = classify(FailureGeneration, err)
		return s.lastErr
	}
	s.article.Body += "\n\n" + text
	return nil
}

// RequestCoverImage generates (or regenerates) cover art from the article's
// image prompt. It does not occupy the Generating/Extending slot, so it may
// run while a continuation is in flight; the two touch disjoint fields.
// Failure leaves any previous image untouched.
func (s *Session) RequestCoverImage(ctx context.Context) error {
	s.mu.Lock()
	if s.article == nil || s.state == StateGenerating || s.state == StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("%w: no article ready for an image", ErrInvalidState)
	}
	if s.article.ImagePrompt == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: article has no image prompt", ErrInvalidState)
	}
	token := s.genToken
	prompt := s.article.ImagePrompt
	title := s.article.Title
	s.mu.Unlock()

	dataURI, err := s.client.GenerateImage(ctx, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.genToken != token || s.article == nil {
		// The article this image belongs to is gone.
		return nil
	}
	if err != nil {
		s.lastErr = classify(FailureImage, err)
		return s.lastErr
	}
	s.article.GeneratedImageURL = dataURI
	if s.history != nil {
		s.history.UpdateThumbnail(title, dataURI)
	}
	return nil
}

// ShareToken encodes the current article for a share link. Ready only.
func (s *Session) ShareToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady || s.article == nil {
		return "", fmt.Errorf("%w: no article ready to share", ErrInvalidState)
	}
	return share.Encode(share.Payload{
		Article:  *s.article,
		Category: string(s.category),
		Logo:     s.logo,
	})
}

// LoadFromShareToken replaces the whole session from an inbound token. Valid
// from any state; an in-flight generation is abandoned. A malformed token is
// logged and ignored, leaving the session exactly as it was; the return value
// reports whether the payload was accepted.
func (s *Session) LoadFromShareToken(token string) bool {
	payload, err := share.Decode(token)
	if err != nil {
		s.logger.Warn("ignoring malformed share token", "error", err)
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.genToken = uuid.New()
	s.extToken = uuid.New()
	art := payload.Article
	s.article = &art
	s.category = generator.Category(payload.Category)
	s.logo = payload.Logo
	s.lastErr = nil
	s.state = StateReady
	if s.history != nil {
		s.history.RecordIfAbsent(art, payload.Category, art.GeneratedImageURL)
	}
	return true
}

// SetLogo attaches branding carried into share payloads and exports.
func (s *Session) SetLogo(logo string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logo = logo
}

// History lists past entries, excluding the live article's own.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	exclude := ""
	if s.article != nil {
		exclude = s.article.Title
	}
	s.mu.Unlock()
	return s.HistoryExcluding(exclude)
}

// HistoryExcluding lists past entries minus the given title.
func (s *Session) HistoryExcluding(title string) []history.Entry {
	if s.history == nil {
		return nil
	}
	return s.history.List(title)
}
