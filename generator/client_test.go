package generator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RobSonPL/Blog-Ai/generator"
)

const articleJSON = `{
	"title": "Remote Work",
	"introduction": "Intro text.",
	"body": "Body text.",
	"conclusion": "Closing text.",
	"imagePrompt": "a tidy home office"
}`

type fakeService struct {
	completeFn func(ctx context.Context, p generator.Prompt) (string, error)
	groundedFn func(ctx context.Context, p generator.Prompt) (string, error)
	imageFn    func(ctx context.Context, prompt string) (string, error)
}

func (f *fakeService) Complete(ctx context.Context, p generator.Prompt) (string, error) {
	return f.completeFn(ctx, p)
}

func (f *fakeService) CompleteGrounded(ctx context.Context, p generator.Prompt) (string, error) {
	if f.groundedFn == nil {
		return f.completeFn(ctx, p)
	}
	return f.groundedFn(ctx, p)
}

func (f *fakeService) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if f.imageFn == nil {
		return "", generator.ErrNoImage
	}
	return f.imageFn(ctx, prompt)
}

func newClient(t *testing.T, svc *fakeService) *generator.Client {
	t.Helper()
	client, err := generator.NewClient(svc, svc, nil)
	require.NoError(t, err)
	return client
}

func TestGenerateArticleRecoversWrappedObject(t *testing.T) {
	svc := &fakeService{completeFn: func(_ context.Context, _ generator.Prompt) (string, error) {
		return "Here you go!\n" + articleJSON + "\nEnjoy.", nil
	}}
	art, err := newClient(t, svc).GenerateArticle(context.Background(), "remote work", generator.CategoryBusiness, generator.LengthMedium)
	require.NoError(t, err)
	require.Equal(t, "Remote Work", art.Title)
	require.Equal(t, "a tidy home office", art.ImagePrompt)
	require.Empty(t, art.GeneratedImageURL)
}

func TestGenerateArticleEmptyTopic(t *testing.T) {
	svc := &fakeService{completeFn: func(_ context.Context, _ generator.Prompt) (string, error) {
		t.Fatal("service must not be called for an empty topic")
		return "", nil
	}}
	_, err := newClient(t, svc).GenerateArticle(context.Background(), "  ", generator.CategoryBusiness, generator.LengthShort)
	var genErr *generator.GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestGenerateArticleEmptyCompletion(t *testing.T) {
	svc := &fakeService{completeFn: func(_ context.Context, _ generator.Prompt) (string, error) {
		return "   \n", nil
	}}
	_, err := newClient(t, svc).GenerateArticle(context.Background(), "topic", generator.CategoryHealth, generator.LengthShort)
	var genErr *generator.GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestGenerateArticleMissingFieldIsFailure(t *testing.T) {
	svc := &fakeService{completeFn: func(_ context.Context, _ generator.Prompt) (string, error) {
		return `{"title":"T","introduction":"I","body":"B","conclusion":"C"}`, nil
	}}
	_, err := newClient(t, svc).GenerateArticle(context.Background(), "topic", generator.CategoryTravel, generator.LengthLong)
	var genErr *generator.GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestGenerateArticleTransportFailure(t *testing.T) {
	svc := &fakeService{completeFn: func(_ context.Context, _ generator.Prompt) (string, error) {
		return "", errors.New("connection reset")
	}}
	_, err := newClient(t, svc).GenerateArticle(context.Background(), "topic", generator.CategoryFinance, generator.LengthShort)
	var genErr *generator.GenerationError
	require.ErrorAs(t, err, &genErr)
}

func TestContinueArticleTrimsContext(t *testing.T) {
	var seen string
	svc := &fakeService{completeFn: func(_ context.Context, p generator.Prompt) (string, error) {
		require.Len(t, p.History, 1)
		seen = p.History[0].Content
		return "more text", nil
	}}
	long := strings.Repeat("é", 600) // multi-byte on purpose
	text, err := newClient(t, svc).ContinueArticle(context.Background(), "Title", long)
	require.NoError(t, err)
	require.Equal(t, "more text", text)
	require.Equal(t, 500, len([]rune(seen)))
	require.Equal(t, strings.Repeat("é", 500), seen)
}

func TestContinueArticleEmptyCompletionIsNoop(t *testing.T) {
	svc := &fakeService{completeFn: func(_ context.Context, _ generator.Prompt) (string, error) {
		return "  \n", nil
	}}
	text, err := newClient(t, svc).ContinueArticle(context.Background(), "Title", "body")
	require.NoError(t, err)
	require.Equal(t, "", text)
}

func TestGenerateImageNoPart(t *testing.T) {
	svc := &fakeService{completeFn: func(_ context.Context, _ generator.Prompt) (string, error) { return "", nil }}
	_, err := newClient(t, svc).GenerateImage(context.Background(), "a sunset")
	require.ErrorIs(t, err, generator.ErrNoImage)
}

func TestSuggestTopicsExtractsArray(t *testing.T) {
	svc := &fakeService{
		completeFn: func(_ context.Context, _ generator.Prompt) (string, error) { return "", nil },
		groundedFn: func(_ context.Context, _ generator.Prompt) (string, error) {
			return "Here are some ideas:\n[{\"title\":\"X\",\"description\":\"Y\"}]\nHope this helps!", nil
		},
	}
	got, err := newClient(t, svc).SuggestTopics(context.Background(), "technology", generator.RangeWeekly)
	require.NoError(t, err)
	require.Equal(t, []generator.Suggestion{{Title: "X", Description: "Y"}}, got)
}

func TestSuggestTopicsFiltersIncompleteEntries(t *testing.T) {
	svc := &fakeService{
		completeFn: func(_ context.Context, _ generator.Prompt) (string, error) { return "", nil },
		groundedFn: func(_ context.Context, _ generator.Prompt) (string, error) {
			return `[{"title":"ok","description":"fine"},{"title":"no description"},{"description":"no title"}]`, nil
		},
	}
	got, err := newClient(t, svc).SuggestTopics(context.Background(), "travel", generator.RangeMonthly)
	require.NoError(t, err)
	require.Equal(t, []generator.Suggestion{{Title: "ok", Description: "fine"}}, got)
}

func TestSuggestTopicsCapsAtFive(t *testing.T) {
	svc := &fakeService{
		completeFn: func(_ context.Context, _ generator.Prompt) (string, error) { return "", nil },
		groundedFn: func(_ context.Context, _ generator.Prompt) (string, error) {
			return `[{"title":"1","description":"d"},{"title":"2","description":"d"},{"title":"3","description":"d"},
				{"title":"4","description":"d"},{"title":"5","description":"d"},{"title":"6","description":"d"}]`, nil
		},
	}
	got, err := newClient(t, svc).SuggestTopics(context.Background(), "health", generator.RangeWeekly)
	require.NoError(t, err)
	require.Len(t, got, 5)
}

func TestSuggestTopicsNoArrayIsRecoverable(t *testing.T) {
	svc := &fakeService{
		completeFn: func(_ context.Context, _ generator.Prompt) (string, error) { return "", nil },
		groundedFn: func(_ context.Context, _ generator.Prompt) (string, error) {
			return "I could not find any topics right now, sorry.", nil
		},
	}
	got, err := newClient(t, svc).SuggestTopics(context.Background(), "finance", generator.RangeWeekly)
	var parseErr *generator.SuggestionParseError
	require.ErrorAs(t, err, &parseErr)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestSuggestTopicsFallsBackUngrounded(t *testing.T) {
	var askedEvergreen bool
	svc := &fakeService{
		groundedFn: func(_ context.Context, _ generator.Prompt) (string, error) {
			return "", errors.New("tool restricted")
		},
		completeFn: func(_ context.Context, p generator.Prompt) (string, error) {
			askedEvergreen = strings.Contains(p.User, "evergreen")
			return `[{"title":"Budgeting basics","description":"Timeless."}]`, nil
		},
	}
	got, err := newClient(t, svc).SuggestTopics(context.Background(), "finance", generator.RangeWeekly)
	require.NoError(t, err)
	require.True(t, askedEvergreen)
	require.Len(t, got, 1)
}

func TestSuggestTopicsFallbackFailureIsTerminal(t *testing.T) {
	svc := &fakeService{
		groundedFn: func(_ context.Context, _ generator.Prompt) (string, error) {
			return "", errors.New("tool restricted")
		},
		completeFn: func(_ context.Context, _ generator.Prompt) (string, error) {
			return "", errors.New("service unavailable")
		},
	}
	_, err := newClient(t, svc).SuggestTopics(context.Background(), "finance", generator.RangeWeekly)
	var genErr *generator.GenerationError
	require.ErrorAs(t, err, &genErr)
}
