package ai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	p, err := NewProvider("pollinations")
	require.NoError(t, err)
	assert.NotNil(t, p)

	p, err = NewProvider("")
	require.NoError(t, err)
	assert.NotNil(t, p)

	_, err = NewProvider("skynet")
	assert.Error(t, err)
}

func TestPollinationsGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Messages, 2)
		assert.Equal(t, "system", payload.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"\"zzz... who is it...\""}}]}`))
	}))
	defer srv.Close()

	p := NewPollinationsProvider()
	p.url = srv.URL

	reply, err := p.Generate([]Message{
		{Role: "system", Content: "You are asleep."},
		{Role: "user", Content: "hey, wake up"},
	})
	require.NoError(t, err)
	assert.Equal(t, "zzz... who is it...", reply) // wrapping quotes stripped
}

func TestPollinationsGenerateHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewPollinationsProvider()
	p.url = srv.URL

	_, err := p.Generate([]Message{{Role: "user", Content: "hi"}})
	assert.ErrorContains(t, err, "429")
}

func TestPollinationsGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewPollinationsProvider()
	p.url = srv.URL

	_, err := p.Generate([]Message{{Role: "user", Content: "hi"}})
	assert.ErrorContains(t, err, "empty choices")
}

func TestCleanReply(t *testing.T) {
	assert.Equal(t, "hello", cleanReply(`"hello"`))
	assert.Equal(t, "hello", cleanReply("<think>internal reasoning</think>hello"))
	assert.Equal(t, `say "hi" now`, cleanReply(`say "hi" now`)) // asymmetric quotes kept
}

func TestCleanReplyTruncatesLongReplies(t *testing.T) {
	long := strings.Repeat("ворчание ", 400) // multi-byte runes, well past the cap
	got := cleanReply(long)
	assert.LessOrEqual(t, len([]rune(got)), 2000)
	assert.True(t, strings.HasSuffix(got, "..."))

	assert.Equal(t, "short reply", cleanReply("short reply"))
}

func TestIsGarbageResponse(t *testing.T) {
	assert.True(t, isGarbageResponse("<html><body>error</body></html>"))
	assert.True(t, isGarbageResponse("    "))
	assert.True(t, isGarbageResponse("hi"))
	assert.False(t, isGarbageResponse("a perfectly fine reply"))
}
