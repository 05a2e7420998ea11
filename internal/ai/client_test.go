package ai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func answer(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(body)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{APIKey: "test-key", BaseURL: srv.URL}, quietLogger())
}

func TestMissingCredentialNeverCallsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, quietLogger())
	assert.False(t, c.Enabled())

	_, err := c.DecomposeGoal(t.Context(), "ship v1")
	require.ErrorIs(t, err, ErrMissingCredential)
	var credErr *CredentialError
	require.ErrorAs(t, err, &credErr)
	assert.Equal(t, DefaultRemediation, credErr.Remediation)

	_, err = c.SuggestHint(t.Context(), "title", "desc")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Zero(t, calls.Load())
}

func TestDecomposeGoalSendsSchemaAndParsesDrafts(t *testing.T) {
	var got generateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/"+DefaultModel+":generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, answer(`[{"title":"Write tests","description":"cover the store","priority":"Alta","tags":["qa"]},{"title":"Release","description":"","priority":"Low","tags":[]}]`))
	})

	drafts, err := c.DecomposeGoal(t.Context(), "ship v1")
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, "Write tests", drafts[0].Title)
	assert.Equal(t, "Alta", drafts[0].Priority)
	assert.Equal(t, []string{"qa"}, drafts[0].Tags)

	require.NotNil(t, got.GenerationConfig)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMIMEType)
	require.NotNil(t, got.GenerationConfig.ResponseSchema)
	assert.Equal(t, "ARRAY", got.GenerationConfig.ResponseSchema.Type)
	assert.ElementsMatch(t, []string{"title", "description", "priority", "tags"}, got.GenerationConfig.ResponseSchema.Items.Required)
	require.Len(t, got.Contents, 1)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "ship v1")
}

func TestDecomposeGoalMalformedJSONYieldsEmpty(t *testing.T) {
	for _, text := range []string{"not json", `{"title":"x"}`, ""} {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, answer(text))
		})
		drafts, err := c.DecomposeGoal(t.Context(), "goal")
		require.NoError(t, err, text)
		assert.NotNil(t, drafts, text)
		assert.Empty(t, drafts, text)
	}
}

func TestDecomposeGoalPropagatesAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"API key not valid"}}`)
	})
	_, err := c.DecomposeGoal(t.Context(), "goal")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "API key not valid", apiErr.Message)
}

func TestSuggestHint(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "Fix login - users get logged out")
		assert.NotContains(t, string(body), "responseSchema")
		_, _ = io.WriteString(w, answer("  Reproduce first. Then bisect.  "))
	})
	hint, err := c.SuggestHint(t.Context(), "Fix login", "users get logged out")
	require.NoError(t, err)
	assert.Equal(t, "Reproduce first. Then bisect.", hint)
}

func TestSuggestHintFallsBack(t *testing.T) {
	empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[]}`)
	})
	hint, err := empty.SuggestHint(t.Context(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, FallbackHint, hint)

	failing := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	hint, err = failing.SuggestHint(t.Context(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, FallbackHint, hint)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	for i := 0; i < 3; i++ {
		_, err := c.DecomposeGoal(t.Context(), "goal")
		require.Error(t, err)
	}
	_, err := c.DecomposeGoal(t.Context(), "goal")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "temporarily unavailable"), err.Error())
	assert.Equal(t, int32(3), calls.Load())
}

func TestNewAppliesDefaults(t *testing.T) {
	c := New(Config{APIKey: "k", BaseURL: "http://example.test/"}, nil)
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, "http://example.test", c.cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, c.cfg.Timeout)
}
