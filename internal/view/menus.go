package view

import (
	"fmt"

	"support-bot-backend/internal/action"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
)

// UserMenu is the end-user top-level screen: category picker plus access to
// the caller's own tickets.
func UserMenu(offHours bool) Screen {
	text := "👋 *Welcome to Support Center*\nChoose a category:"
	if offHours {
		text = "🌙 *We are currently offline.* You can still open a ticket and we will reply during working hours.\n\n" + text
	}

	kb := transport.Keyboard{}
	row := []transport.Button{}
	for _, cat := range model.Categories() {
		row = append(row, transport.Button{
			Label:  cat.Label(),
			Action: action.Action{Kind: action.KindSelectCategory, Category: cat.Key},
		})
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	kb = append(kb, transport.Row(transport.Button{
		Label:  "🗂 My Tickets",
		Action: action.Action{Kind: action.KindMyTickets, Page: 1},
	}))

	return Screen{Text: text, Keyboard: kb}
}

func AdminMenu() Screen {
	return Screen{
		Text: "👋 *Admin Panel*",
		Keyboard: transport.Keyboard{
			transport.Row(transport.Button{
				Label:  "📊 Dashboard",
				Action: action.Action{Kind: action.KindDashboard, Page: 1, Status: model.TicketStatusOpen},
			}),
			transport.Row(transport.Button{
				Label:  "👥 Users",
				Action: action.Action{Kind: action.KindOwners, Page: 1},
			}),
		},
	}
}

// MenuFor returns the role's top-level screen, the navigation fallback when
// the back stack is empty.
func MenuFor(isAdmin, offHours bool) (ID, Screen) {
	if isAdmin {
		return ID{Kind: KindAdminMenu}, AdminMenu()
	}
	return ID{Kind: KindUserMenu}, UserMenu(offHours)
}

// DescriptionPrompt asks for the issue details after a category was chosen.
func DescriptionPrompt(cat model.Category) Screen {
	return Screen{
		Text: fmt.Sprintf("📝 *Category:* %s\n\nPlease explain your issue in detail. You can send text, a photo or a video.", cat.Label()),
		Keyboard: transport.Keyboard{
			transport.Row(transport.Button{Label: "❌ Cancel", Action: action.Action{Kind: action.KindCancel}}),
		},
	}
}

// ReplyPrompt asks for the reply body; cancel returns to the given action.
func ReplyPrompt(ticketID string, cancel action.Action) Screen {
	return Screen{
		Text: fmt.Sprintf("✍️ *Reply to ticket #%s:*", ticketID),
		Keyboard: transport.Keyboard{
			transport.Row(transport.Button{Label: "❌ Cancel", Action: cancel}),
		},
	}
}
