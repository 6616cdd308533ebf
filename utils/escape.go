package utils

import "strings"

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"`", "\\`",
	"[", "\\[",
)

// EscapeMarkdown neutralises the markdown control characters the transport
// parses, so free-form user text renders verbatim.
func EscapeMarkdown(text string) string {
	if text == "" {
		return ""
	}
	return markdownEscaper.Replace(text)
}
