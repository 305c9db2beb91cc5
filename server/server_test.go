package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RobSonPL/Blog-Ai/generator"
	"github.com/RobSonPL/Blog-Ai/history"
	"github.com/RobSonPL/Blog-Ai/server"
	"github.com/RobSonPL/Blog-Ai/session"
	"github.com/RobSonPL/Blog-Ai/share"
)

type stubService struct {
	reply func(p generator.Prompt) (string, error)
}

func (s *stubService) Complete(_ context.Context, p generator.Prompt) (string, error) {
	return s.reply(p)
}

func (s *stubService) CompleteGrounded(ctx context.Context, p generator.Prompt) (string, error) {
	return s.Complete(ctx, p)
}

func (s *stubService) GenerateImage(_ context.Context, _ string) (string, error) {
	return "data:image/png;base64,aW1n", nil
}

type memBackend struct{ data []byte }

func (m *memBackend) Load() ([]byte, error) { return m.data, nil }
func (m *memBackend) Save(d []byte) error   { m.data = d; return nil }

const stubArticle = `{
	"title": "Stub",
	"introduction": "i",
	"body": "b",
	"conclusion": "c",
	"imagePrompt": "p"
}`

func newServer(t *testing.T, reply func(p generator.Prompt) (string, error)) *server.Server {
	t.Helper()
	svc := &stubService{reply: reply}
	client, err := generator.NewClient(svc, svc, nil)
	require.NoError(t, err)
	store := history.NewStore(&memBackend{}, nil)
	sess, err := session.New(client, store, nil)
	require.NoError(t, err)
	srv, err := server.New(sess, client, nil)
	require.NoError(t, err)
	return srv
}

func TestGenerateEndpoint(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) {
		return "Sure thing!\n" + stubArticle, nil
	})

	body := bytes.NewBufferString(`{"topic":"anything","category":"travel","length":"short"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/articles", body)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		State   string             `json:"state"`
		Article *generator.Article `json:"article"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, "ready", view.State)
	require.Equal(t, "Stub", view.Article.Title)
}

func TestGenerateEndpointRequiresTopic(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) { return stubArticle, nil })

	req := httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(`{"topic":""}`))
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestionsParseFailureIsNot5xx(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) {
		return "sorry, nothing today", nil
	})

	req := httptest.NewRequest(http.MethodGet, "/api/suggestions?category=travel&range=weekly", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Suggestions []generator.Suggestion `json:"suggestions"`
		Retryable   bool                   `json:"retryable"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Suggestions)
	require.True(t, resp.Retryable)
}

func TestShareLoadMalformedTokenKeepsSession(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) { return stubArticle, nil })

	req := httptest.NewRequest(http.MethodGet, "/api/share/not-base64!!", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The session is untouched.
	get := httptest.NewRequest(http.MethodGet, "/api/articles", nil)
	getRec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(getRec, get)
	var view struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &view))
	require.Equal(t, "idle", view.State)
}

func TestContinueBeforeReadyIsConflict(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) { return stubArticle, nil })

	req := httptest.NewRequest(http.MethodPost, "/api/articles/continue", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestImageBeforeReadyIsConflict(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) { return stubArticle, nil })

	req := httptest.NewRequest(http.MethodPost, "/api/articles/image", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHistoryExcludeParameter(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) { return stubArticle, nil })

	gen := httptest.NewRequest(http.MethodPost, "/api/articles",
		strings.NewReader(`{"topic":"anything","category":"travel","length":"short"}`))
	srv.Routes().ServeHTTP(httptest.NewRecorder(), gen)

	// Default: the live article's own entry is excluded.
	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	var entries []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Empty(t, entries)

	// Explicit exclude overrides that default.
	req = httptest.NewRequest(http.MethodGet, "/api/history?exclude=Other", nil)
	rec = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	entries = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "Stub", entries[0].Title)
}

func TestShareLoadValidToken(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) { return stubArticle, nil })

	token, err := share.Encode(share.Payload{
		Article: generator.Article{
			Title:        "Shared",
			Introduction: "i",
			Body:         "b",
			Conclusion:   "c",
			ImagePrompt:  "p",
		},
		Category: "health",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/share/"+token, nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		State   string             `json:"state"`
		Article *generator.Article `json:"article"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, "ready", view.State)
	require.Equal(t, "Shared", view.Article.Title)
}

func TestExportRequiresReadyArticle(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) { return stubArticle, nil })

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestExportReturnsHTML(t *testing.T) {
	srv := newServer(t, func(_ generator.Prompt) (string, error) { return stubArticle, nil })

	gen := httptest.NewRequest(http.MethodPost, "/api/articles",
		strings.NewReader(`{"topic":"anything","category":"travel","length":"short"}`))
	srv.Routes().ServeHTTP(httptest.NewRecorder(), gen)

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "<h1>Stub</h1>")
}
