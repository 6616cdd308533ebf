package bot

import "strings"

// faqEntries maps lowercase keywords to canned answers. Matched only when
// the sender has no pending conversation state.
var faqEntries = []struct {
	keyword string
	answer  string
}{
	{"refund", "💳 Refunds are processed within 3-5 business days. If it has been longer, open a *Payment* ticket and we will look into it."},
	{"payment", "💳 We accept all major cards and crypto. For billing problems open a *Payment* ticket so the team can check your account."},
	{"premium", "⭐️ Premium unlocks higher limits and priority support. Upgrade from the account page, or open a ticket if the upgrade did not apply."},
	{"how to buy", "🛒 Pick a plan on the website, pay at checkout and access is granted instantly. Stuck on a step? Open a *Payment* ticket."},
	{"password", "🔑 Use the *Forgot password* link on the login page. If the reset mail never arrives, open a *Tech Issue* ticket."},
	{"slow", "🛠 Try reloading first. Still slow? Open a *Tech Issue* ticket and include roughly when it started."},
}

func faqAnswer(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, e := range faqEntries {
		if strings.Contains(lowered, e.keyword) {
			return e.answer, true
		}
	}
	return "", false
}
