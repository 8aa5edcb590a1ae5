package notifier

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestRenderMarkdown(t *testing.T) {
	msg := StructuredMessage{
		Title: "Watchlist *tick*",
		Sections: []MessageSection{
			{Title: "AAPL", Lines: []string{"done", " ", "run=1"}},
			{Title: "EMPTY", Lines: []string{""}},
			{Title: "MSFT", Lines: []string{"failed ```x```"}},
		},
		Footer:    "2 symbols",
		Timestamp: time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC),
	}
	out := msg.RenderMarkdown()
	assert.True(t, strings.HasPrefix(out, "*Watchlist tick*\n\n```\nAAPL\n- done\n- run=1\n\nMSFT\n"))
	assert.NotContains(t, out, "EMPTY")
	assert.Contains(t, out, "failed '''x'''")
	assert.True(t, strings.HasSuffix(out, "2 symbols\nTime: 2024-05-01 16:30:00 UTC"))
}

func TestRenderMarkdownTruncates(t *testing.T) {
	msg := StructuredMessage{Footer: strings.Repeat("é", maxStructuredMessageLen+10)}
	out := []rune(msg.RenderMarkdown())
	assert.Len(t, out, maxStructuredMessageLen)
	assert.Equal(t, "...", string(out[len(out)-3:]))
}

func TestRenderMarkdownLongDigestKeepsFenceClosed(t *testing.T) {
	secs := make([]MessageSection, 20)
	for i := range secs {
		secs[i] = MessageSection{Title: fmt.Sprintf("SYM%02d", i), Lines: []string{strings.Repeat("x", 280)}}
	}
	msg := StructuredMessage{
		Title:     "Watchlist analysis",
		Sections:  secs,
		Footer:    "20 analyzed, 0 failed",
		Timestamp: time.Date(2024, 5, 1, 16, 30, 0, 0, time.UTC),
	}
	out := msg.RenderMarkdown()

	assert.LessOrEqual(t, len([]rune(out)), maxStructuredMessageLen)
	assert.Equal(t, 0, strings.Count(out, "```")%2)
	assert.Contains(t, out, "...\n```")
	assert.True(t, strings.HasPrefix(out, "*Watchlist analysis*\n\n```\nSYM00\n"))
	assert.True(t, strings.HasSuffix(out, "20 analyzed, 0 failed\nTime: 2024-05-01 16:30:00 UTC"))
}

func TestTelegramSendText(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bot123:abc/sendMessage", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "-100", gjson.GetBytes(body, "chat_id").String())
		assert.Equal(t, "hello", gjson.GetBytes(body, "text").String())
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Too Many Requests"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL+"/", "123:abc", "-100")
	tg.Backoff = time.Millisecond
	require.NoError(t, tg.SendText(context.Background(), "hello"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestTelegramClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegram(srv.URL, "t", "c")
	tg.Backoff = time.Millisecond
	err := tg.SendText(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Equal(t, int32(1), calls.Load())
}

func TestTelegramRequiresCredentials(t *testing.T) {
	err := NewTelegram("", "", "c").SendText(context.Background(), "x")
	assert.Error(t, err)
}
