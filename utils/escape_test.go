package utils

import "testing"

func TestEscapeMarkdown(t *testing.T) {
	cases := map[string]string{
		"":                      "",
		"plain text":            "plain text",
		"*bold* _em_ `code`":    "\\*bold\\* \\_em\\_ \\`code\\`",
		"[link](http://x)":      "\\[link](http://x)",
		"user_name with under_": "user\\_name with under\\_",
	}
	for in, want := range cases {
		if got := EscapeMarkdown(in); got != want {
			t.Errorf("EscapeMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}
