package wikisummary

import "fmt"

// Answers use a fixed low temperature for more factual output, regardless
// of the configured summary temperature.
const answerTemperature = 0.3

const summarySystemPrompt = "You are a helpful assistant that creates clear, concise summaries of Wikipedia articles."

const answerSystemPrompt = `You are a helpful assistant that answers questions based ONLY on the provided Wikipedia article content.
If the question cannot be answered from the article, politely state that the information is not available in this article.
Do not use any external knowledge - only use information from the article text provided.`

// summaryPrompt builds the system/user pair for the summarize workflow.
// article must already be truncated to the input token budget.
func summaryPrompt(article string, maxWords int) (system, user string) {
	user = fmt.Sprintf(`Please provide a concise summary of the following Wikipedia article in approximately %d words or less.
Focus on the main points, key facts, and important information. Write in clear, readable prose.

Article content:
%s

Summary:`, maxWords, article)
	return summarySystemPrompt, user
}

// answerPrompt builds the system/user pair for the chat workflow. The
// system prompt grounds the model in the article text; title is the
// original query, included for context when non-empty.
func answerPrompt(article, question, title string) (system, user string) {
	about := ""
	if title != "" {
		about = " about " + title
	}
	user = fmt.Sprintf(`Based on the following Wikipedia article%s, please answer this question:

Question: %s

Article content:
%s

Answer (based only on the article above):`, about, question, article)
	return answerSystemPrompt, user
}
