package generator

import (
	"fmt"
	"strings"
)

// SystemPrompt frames both generation stages.
const SystemPrompt = "You are an expert cinematographer, director, and script writer. You have been tasked with summarizing a " +
	"movie plot using only emoji characters. You must also provide an explanation of the plot with emoji, i.e. " +
	"what the emoji represent. You may use any emoji you like, but you must use at least 5 emoji characters." +
	" You may not use any plain text in the plot with emoji." +
	" Your emoji plot should be as thorough as possible, with as many plot points as possible represented in the" +
	" emoji. Include at least 30 emoji representing plot points."

const emojiResponseShape = `Respond with a JSON object with exactly these string fields: ` +
	`"title" (the movie title), "plot" (the plain text plot), ` +
	`"plot_with_emoji" (the plot described solely with emoji, no plain text, one line per plot beat), ` +
	`"explanation" (what the emoji represent).`

// PlotPrompt is the stage one user prompt.
func PlotPrompt(title string, minBeats int) string {
	return strings.Join([]string{
		fmt.Sprintf("The title of the movie is %s.", title),
		fmt.Sprintf("Please describe the plot in plaintext, including at least %d plot beats.", minBeats),
	}, "\n")
}

// EmojiPrompt is the stage two user prompt.
func EmojiPrompt(title, plot string, minEmoji int) string {
	return strings.Join([]string{
		fmt.Sprintf("The title of the movie is %s.", title),
		fmt.Sprintf("The plot of the movie is %s.", strings.TrimSpace(plot)),
		fmt.Sprintf("Please describe the plot using solely emoji. Include at least %d emoji.", minEmoji),
		emojiResponseShape,
	}, "\n")
}
