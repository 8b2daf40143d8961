package movieplot

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"emojiplot/internal/services"
)

const (
	variationSelector = '\uFE0F'
	keycapCombiner    = '\u20E3'
)

// Rules are the minimums an emoji plot must meet.
type Rules struct {
	MinEmoji         int
	MinDistinctEmoji int
}

// DefaultRules mirrors the prompt: at least 30 emoji, at least 5 distinct.
var DefaultRules = Rules{MinEmoji: 30, MinDistinctEmoji: 5}

// EmojiStats summarizes the grapheme clusters of an emoji plot.
type EmojiStats struct {
	Emoji    int
	Distinct int
	// TextRuns holds clusters that are plain text (letters or bare digits).
	TextRuns []string
}

type clusterKind int

const (
	clusterSpace clusterKind = iota
	clusterEmoji
	clusterText
	clusterSymbol
)

// AnalyzeEmoji counts emoji grapheme clusters in value. Flags, skin tone
// sequences and ZWJ families count as a single emoji each.
func AnalyzeEmoji(value string) EmojiStats {
	var stats EmojiStats
	distinct := make(map[string]struct{})
	gr := uniseg.NewGraphemes(value)
	for gr.Next() {
		cluster := gr.Str()
		switch classifyCluster(cluster) {
		case clusterEmoji:
			stats.Emoji++
			distinct[strings.ReplaceAll(cluster, string(variationSelector), "")] = struct{}{}
		case clusterText:
			stats.TextRuns = append(stats.TextRuns, cluster)
		}
	}
	stats.Distinct = len(distinct)
	return stats
}

// Validate checks the emoji plot of a against rules. Violations are reported
// as services.ErrValidation.
func Validate(a Artifact, rules Rules) error {
	stats := AnalyzeEmoji(a.PlotWithEmoji)
	if len(stats.TextRuns) > 0 {
		sample := strings.Join(stats.TextRuns[:min(len(stats.TextRuns), 8)], "")
		return services.Wrap(services.ErrValidation, "movieplot", "validate",
			fmt.Sprintf("emoji plot for %q contains plain text %q", a.Title, sample), nil)
	}
	if stats.Emoji < rules.MinEmoji {
		return services.Wrap(services.ErrValidation, "movieplot", "validate",
			fmt.Sprintf("emoji plot for %q has %d emoji, need at least %d", a.Title, stats.Emoji, rules.MinEmoji), nil)
	}
	if stats.Distinct < rules.MinDistinctEmoji {
		return services.Wrap(services.ErrValidation, "movieplot", "validate",
			fmt.Sprintf("emoji plot for %q has %d distinct emoji, need at least %d", a.Title, stats.Distinct, rules.MinDistinctEmoji), nil)
	}
	return nil
}

func classifyCluster(cluster string) clusterKind {
	hasEmoji, hasDigit, allSpace := false, false, true
	for _, r := range cluster {
		switch {
		case unicode.IsLetter(r):
			return clusterText
		case unicode.IsSpace(r):
			continue
		case unicode.Is(unicode.So, r), r == keycapCombiner:
			hasEmoji = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		allSpace = false
	}
	switch {
	case allSpace:
		return clusterSpace
	case hasEmoji:
		return clusterEmoji
	case hasDigit:
		return clusterText
	default:
		return clusterSymbol
	}
}
