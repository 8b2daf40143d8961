package testsupport

import (
	"strings"
	"testing"

	"emojiplot/internal/movieplot"
)

// EmojiPlot is a line-per-beat emoji plot that satisfies the default emoji
// minimums (30 emoji, 5 distinct).
const EmojiPlot = "🏜️🐛🌶️\n👦🏻🔮👑\n🚀🪐🏰\n🗡️🤺👦🏻\n🐛🌊🏜️\n👩🏽🔥💧\n🌶️🧠👁️\n🐛💥🏰\n🏜️⚔️🏰\n👑🗡️💀\n🌌✨🏁"

// SampleArtifact builds a valid artifact for title.
func SampleArtifact(t testing.TB, title string) movieplot.Artifact {
	t.Helper()

	artifact, err := movieplot.New(
		title,
		"1. The hero arrives.\n2. The hero triumphs.",
		EmojiPlot,
		"🏜️ is the desert planet.",
	)
	if err != nil {
		t.Fatalf("movieplot.New: %v", err)
	}
	return artifact
}

// PlotFor renders a plain numbered plot mentioning title.
func PlotFor(title string) string {
	var b strings.Builder
	b.WriteString("1. Our story follows " + title + ".\n")
	b.WriteString("2. Things go wrong.\n")
	b.WriteString("3. Things go right.")
	return b.String()
}
