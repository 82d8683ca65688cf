package translation

import (
	"context"
	"fmt"
	"strings"
)

// Translator turns recognized Latin text into English
type Translator interface {
	// Translate returns the English rendering of the given Latin text
	Translate(ctx context.Context, latin string) (string, error)
	// Close releases the translator's resources
	Close() error
}

// prompt builds the instruction shared by all providers
func prompt(latin string) string {
	return fmt.Sprintf("Latin to English translation for: %s", latin)
}

// cleanOutput strips the wrapping some models put around a plain answer
func cleanOutput(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
