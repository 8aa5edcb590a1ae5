package notifier

import (
	"strings"
	"time"
)

// Telegram rejects messages above 4096 characters.
const maxStructuredMessageLen = 3800

type MessageSection struct {
	Title string
	Lines []string
}

// StructuredMessage is rendered as a header, a fenced block of sections and
// an optional footer.
type StructuredMessage struct {
	Title     string
	Sections  []MessageSection
	Footer    string
	Timestamp time.Time
}

const (
	fenceOpen       = "```\n"
	fenceClose      = "```\n\n"
	truncatedMarker = "...\n"
)

// RenderMarkdown produces Telegram Markdown of at most
// maxStructuredMessageLen runes. Header and footer are kept whole; sections
// are cut to the remaining room so the code fence is always closed.
func (m StructuredMessage) RenderMarkdown() string {
	var head, tail strings.Builder
	if header := strings.TrimSpace(m.Title); header != "" {
		head.WriteString("*" + sanitize(header) + "*\n\n")
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		tail.WriteString(sanitize(footer))
		tail.WriteString("\n")
	}
	if !m.Timestamp.IsZero() {
		tail.WriteString("Time: " + m.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}
	room := maxStructuredMessageLen - runeLen(head.String()) - runeLen(tail.String())
	body := strings.TrimSpace(head.String() + renderSections(m.Sections, room) + tail.String())
	if runes := []rune(body); len(runes) > maxStructuredMessageLen {
		return string(runes[:maxStructuredMessageLen-len("...")]) + "..."
	}
	return body
}

func renderSections(secs []MessageSection, room int) string {
	var blocks []string
	for _, sec := range secs {
		lines := nonEmpty(sec.Lines)
		if len(lines) == 0 {
			continue
		}
		var b strings.Builder
		if title := strings.TrimSpace(sec.Title); title != "" {
			b.WriteString(sanitize(title) + "\n")
		}
		for _, line := range lines {
			b.WriteString("- " + sanitize(line) + "\n")
		}
		blocks = append(blocks, b.String())
	}
	if len(blocks) == 0 {
		return ""
	}
	content := []rune(strings.Join(blocks, "\n"))
	limit := room - len(fenceOpen) - len(fenceClose)
	if len(content) > limit {
		keep := limit - len(truncatedMarker)
		if keep <= 0 {
			return ""
		}
		content = append(content[:keep:keep], []rune(truncatedMarker)...)
	}
	return fenceOpen + string(content) + fenceClose
}

func nonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if text := strings.TrimSpace(line); text != "" {
			out = append(out, text)
		}
	}
	return out
}

func runeLen(s string) int { return len([]rune(s)) }

// sanitize keeps user text from closing the code fence or opening bold.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "```", "'''")
	return strings.ReplaceAll(s, "*", "")
}
