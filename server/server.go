package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/RobSonPL/Blog-Ai/exporter"
	"github.com/RobSonPL/Blog-Ai/generator"
	"github.com/RobSonPL/Blog-Ai/history"
	"github.com/RobSonPL/Blog-Ai/session"
)

//go:embed web/dist web/dist/*
var embeddedStatic embed.FS

const requestTimeout = 120 * time.Second

// Server exposes the single live session over a small JSON API plus the
// embedded page shell that consumes #share= fragments.
type Server struct {
	sess     *session.Session
	client   *generator.Client
	logger   *slog.Logger
	staticFS http.Handler
}

func New(sess *session.Session, client *generator.Client, logger *slog.Logger) (*Server, error) {
	if sess == nil {
		return nil, errors.New("session required")
	}
	if client == nil {
		return nil, errors.New("generation client required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sub, err := fs.Sub(embeddedStatic, "web/dist")
	if err != nil {
		return nil, err
	}

	return &Server{
		sess:     sess,
		client:   client,
		logger:   logger,
		staticFS: http.FileServer(http.FS(sub)),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/articles", s.handleArticles)
	mux.HandleFunc("/api/articles/continue", s.handleContinue)
	mux.HandleFunc("/api/articles/image", s.handleImage)
	mux.HandleFunc("/api/suggestions", s.handleSuggestions)
	mux.HandleFunc("/api/history", s.handleHistory)
	mux.HandleFunc("/api/share", s.handleShareEncode)
	mux.HandleFunc("/api/share/", s.handleShareLoad)
	mux.HandleFunc("/api/export", s.handleExport)
	mux.Handle("/", s.staticHandler())
	return s.logMiddleware(mux)
}

func (s *Server) staticHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// fall back to index.html for SPA-ish behavior
		upath := r.URL.Path
		if upath == "/" || !strings.HasPrefix(upath, "/api/") {
			p := upath
			if p == "/" {
				p = "/index.html"
			}
			r.URL.Path = p
			s.staticFS.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// --- Handlers ---

type generateReq struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
	Length   string `json:"length"`
}

type failureView struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type sessionView struct {
	State    string             `json:"state"`
	Article  *generator.Article `json:"article,omitempty"`
	Category string             `json:"category,omitempty"`
	Error    *failureView       `json:"error,omitempty"`
}

func (s *Server) view() sessionView {
	snap := s.sess.Snapshot()
	v := sessionView{
		State:    string(snap.State),
		Article:  snap.Article,
		Category: string(snap.Category),
	}
	if snap.Failure != nil {
		v.Error = &failureView{Kind: string(snap.Failure.Kind), Message: snap.Failure.Error()}
	}
	return v
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, s.view())
	case http.MethodPost:
		var req generateReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Topic) == "" {
			http.Error(w, "topic is required", http.StatusBadRequest)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
		defer cancel()
		// Operation failures land in the view; the page renders them with
		// retry hints. Precondition rejections are conflicts.
		err := s.sess.StartGeneration(ctx, req.Topic, generator.Category(req.Category), generator.Length(req.Length))
		if errors.Is(err, session.ErrInvalidState) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeJSON(w, s.view())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := s.sess.RequestContinuation(ctx); errors.Is(err, session.ErrInvalidState) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, s.view())
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	if err := s.sess.RequestCoverImage(ctx); errors.Is(err, session.ErrInvalidState) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, s.view())
}

type suggestionsResp struct {
	Suggestions []generator.Suggestion `json:"suggestions"`
	Retryable   bool                   `json:"retryable,omitempty"`
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	category := r.URL.Query().Get("category")
	rng := generator.TrendRange(r.URL.Query().Get("range"))
	if rng == "" {
		rng = generator.RangeWeekly
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	suggestions, err := s.client.SuggestTopics(ctx, category, rng)
	if err != nil {
		var parseErr *generator.SuggestionParseError
		if errors.As(err, &parseErr) {
			// Recoverable: empty list plus a retry flag, never a 5xx.
			writeJSON(w, suggestionsResp{Suggestions: []generator.Suggestion{}, Retryable: true})
			return
		}
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, suggestionsResp{Suggestions: suggestions})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var entries []history.Entry
	if exclude := r.URL.Query().Get("exclude"); exclude != "" {
		entries = s.sess.HistoryExcluding(exclude)
	} else {
		entries = s.sess.History()
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, entries)
}

func (s *Server) handleShareEncode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	token, err := s.sess.ShareToken()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, map[string]string{"token": token})
}

// handleShareLoad feeds an inbound #share= token into the session. A
// malformed token is ignored: 204, session untouched.
func (s *Server) handleShareLoad(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.URL.Path, "/api/share/")
	if token == "" {
		http.NotFound(w, r)
		return
	}
	if !s.sess.LoadFromShareToken(token) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, s.view())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.sess.Snapshot()
	if snap.State != session.StateReady || snap.Article == nil {
		http.Error(w, "no article ready to export", http.StatusConflict)
		return
	}
	doc, err := exporter.ExportHTML(*snap.Article, string(snap.Category))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="article.html"`)
	_, _ = w.Write([]byte(doc))
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}
