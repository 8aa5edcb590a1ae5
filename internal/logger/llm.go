package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

var (
	llmMu          sync.Mutex
	llmLog         *log.Logger
	llmDumpPayload bool
)

// LLMMessage is one role/content pair of a chat transcript.
type LLMMessage struct {
	Role    string
	Content string
}

// SetLLMWriter sets the destination of model transcripts. nil disables them.
func SetLLMWriter(w io.Writer) {
	llmMu.Lock()
	defer llmMu.Unlock()
	if w == nil {
		llmLog = nil
		return
	}
	llmLog = log.New(w, "", log.LstdFlags)
}

func EnableLLMPayloadDump(enabled bool) {
	llmMu.Lock()
	llmDumpPayload = enabled
	llmMu.Unlock()
}

type llmSection struct {
	Title string
	Body  string
}

func writeLLM(kind, provider, purpose string, sections []llmSection) {
	llmMu.Lock()
	out := llmLog
	llmMu.Unlock()
	if out == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[LLM]")
	for _, tag := range []string{kind, provider, purpose} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		title := strings.ToUpper(strings.TrimSpace(sec.Title))
		if title == "" {
			title = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(title)
		b.WriteString(" ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	out.Print(b.String())
}

// LogLLMRequest records the messages sent for purpose ("analysis", "report").
// payload is only written when payload dumping is enabled.
func LogLLMRequest(provider, purpose string, messages []LLMMessage, payload string) {
	sections := make([]llmSection, 0, len(messages)+1)
	for _, m := range messages {
		sections = append(sections, llmSection{Title: m.Role, Body: m.Content})
	}
	llmMu.Lock()
	dump := llmDumpPayload
	llmMu.Unlock()
	if dump && strings.TrimSpace(payload) != "" {
		sections = append(sections, llmSection{Title: "payload", Body: payload})
	}
	writeLLM("request", provider, purpose, sections)
}

func LogLLMResponse(provider, purpose, raw string) {
	writeLLM("response", provider, purpose, []llmSection{{Title: "raw", Body: raw}})
}
