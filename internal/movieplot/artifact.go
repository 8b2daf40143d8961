package movieplot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"emojiplot/internal/services"
)

// Artifact is the generated bundle for one title. Build it with New so the
// emoji plot is normalized and required text is present.
type Artifact struct {
	Title         string `json:"title"`
	Plot          string `json:"plot"`
	PlotWithEmoji string `json:"plot_with_emoji"`
	Explanation   string `json:"explanation"`
}

// New validates and normalizes the supplied fields into an Artifact.
func New(title, plot, plotWithEmoji, explanation string) (Artifact, error) {
	switch {
	case strings.TrimSpace(title) == "":
		return Artifact{}, services.Wrap(services.ErrValidation, "movieplot", "new", "title is empty", nil)
	case strings.TrimSpace(plot) == "":
		return Artifact{}, services.Wrap(services.ErrValidation, "movieplot", "new", fmt.Sprintf("plot for %q is empty", title), nil)
	case strings.TrimSpace(plotWithEmoji) == "":
		return Artifact{}, services.Wrap(services.ErrValidation, "movieplot", "new", fmt.Sprintf("emoji plot for %q is empty", title), nil)
	case strings.TrimSpace(explanation) == "":
		return Artifact{}, services.Wrap(services.ErrValidation, "movieplot", "new", fmt.Sprintf("explanation for %q is empty", title), nil)
	}
	return Artifact{
		Title:         title,
		Plot:          plot,
		PlotWithEmoji: NormalizeEmojiPlot(plotWithEmoji),
		Explanation:   explanation,
	}, nil
}

// Key returns the cache key for the artifact's title.
func (a Artifact) Key() string {
	return KeyFor(a.Title)
}

// NormalizeEmojiPlot drops blank lines from an emoji plot by collapsing each
// run of line breaks to its first break. "\n" and "\r\n" both count as breaks
// and text without blank lines is returned as is. The result is a fixed point.
func NormalizeEmojiPlot(value string) string {
	if !strings.Contains(value, "\n\n") && !strings.Contains(value, "\n\r\n") {
		return value
	}
	var b strings.Builder
	b.Grow(len(value))
	afterBreak := false
	for i := 0; i < len(value); i++ {
		switch {
		case value[i] == '\n':
			if !afterBreak {
				b.WriteByte('\n')
			}
			afterBreak = true
		case value[i] == '\r' && i+1 < len(value) && value[i+1] == '\n':
			if !afterBreak {
				b.WriteString("\r\n")
			}
			afterBreak = true
			i++
		default:
			b.WriteByte(value[i])
			afterBreak = false
		}
	}
	return b.String()
}

// Encode renders the artifact in its durable form: a flat JSON object with
// two-space indentation and no HTML escaping.
func Encode(a Artifact) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Decode parses a durable payload. Malformed JSON or a payload that fails
// artifact construction is reported as services.ErrCorruptData.
func Decode(data []byte) (Artifact, error) {
	var raw Artifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return Artifact{}, services.Wrap(services.ErrCorruptData, "movieplot", "decode", "parse payload", err)
	}
	artifact, err := New(raw.Title, raw.Plot, raw.PlotWithEmoji, raw.Explanation)
	if err != nil {
		return Artifact{}, services.Wrap(services.ErrCorruptData, "movieplot", "decode", "invalid payload", err)
	}
	return artifact, nil
}
