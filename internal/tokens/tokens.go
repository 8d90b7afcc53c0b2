// Package tokens provides deterministic token counting and truncation so
// outbound model prompts stay inside the provider's context window.
//
// Counting uses the tiktoken cl100k_base encoding when the encoder can be
// loaded (first use downloads the vocabulary, cached on disk afterwards).
// When it cannot, a heuristic estimate takes over: the larger of a
// word-based and a character-based approximation. The heuristic leans
// high, so a fallback count never understates a prompt and truncation only
// gets more aggressive. Callers that need exactness should still reserve
// margin below the hard window limit.
package tokens

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func loadEncoding() {
	e, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		// Encoder unavailable (offline, cold cache). Heuristic fallback
		// handles counting for the life of the process.
		return
	}
	enc = e
}

// Count returns the number of tokens in text under the cl100k_base
// encoding, or the heuristic estimate when the encoder is unavailable.
// The result is deterministic for a given process.
func Count(text string) int {
	encOnce.Do(loadEncoding)
	if enc != nil {
		return len(enc.EncodeOrdinary(text))
	}
	return estimate(text)
}

// Truncate returns text cut down to at most maxTokens tokens, keeping the
// leading content and discarding the tail. Text that already fits is
// returned unchanged, so truncating an already-truncated result at the
// same budget is a no-op.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	encOnce.Do(loadEncoding)
	if enc != nil {
		toks := enc.EncodeOrdinary(text)
		if len(toks) <= maxTokens {
			return text
		}
		return enc.Decode(toks[:maxTokens])
	}
	return truncateEstimated(text, maxTokens)
}

// estimate approximates the token count without an encoder. Word-heavy
// prose runs ~0.75 words/token; punctuation-dense text tracks closer to
// 4 chars/token. Taking the max of both keeps the estimate on the high
// side for either shape of input.
func estimate(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	wordBased := (len(strings.Fields(text))*4 + 2) / 3
	charBased := len(text) / 4
	if wordBased > charBased {
		return wordBased
	}
	return charBased
}

// truncateEstimated shrinks text on rune boundaries until the estimate
// fits the budget. The estimate is monotonic in text length, so the loop
// terminates and the result re-estimates within budget (idempotence).
func truncateEstimated(text string, maxTokens int) string {
	if estimate(text) <= maxTokens {
		return text
	}
	runes := []rune(text)
	keep := maxTokens * 4
	if keep > len(runes) {
		keep = len(runes)
	}
	for keep > 0 && estimate(string(runes[:keep])) > maxTokens {
		keep -= keep/10 + 1
	}
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep])
}
