package prompt

import (
	"fmt"
	"strings"
)

// BuildChat renders the recommendation-chat prompt. contextTitles are the
// anime the user is currently looking at, suggestions are the titles the
// engine just recommended.
func BuildChat(message string, contextTitles, suggestions []string) string {
	contextBlock := ""
	if len(contextTitles) > 0 {
		contextBlock = fmt.Sprintf("\n\nThe user's recently watched anime: [%s]", strings.Join(contextTitles, ", "))
	}

	suggestionBlock := ""
	if len(suggestions) > 0 {
		suggestionBlock = fmt.Sprintf("\nAnime we just recommended to them: [%s]", strings.Join(suggestions, ", "))
	}

	return fmt.Sprintf(`You are a friendly anime recommendation assistant chatting with a user about their watch history and our suggestions.

The user said: "%s"%s%s

Guidelines:
- Answer in 2-4 sentences, conversational and warm
- When the user asks why something was recommended, connect it to titles from their watch history (shared genres, studios, or tone)
- Only discuss anime; if asked about something unrelated, gently steer the conversation back
- Never invent titles that are not in the lists above when explaining our recommendations
- No markdown, no bullet points, plain text only
`, message, contextBlock, suggestionBlock)
}
