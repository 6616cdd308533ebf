// Package view computes renderable screens: paginated listings, ticket
// detail transcripts and menus. It is pure; the router decides when to show
// what, the transport decides how.
package view

import (
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
)

type Kind string

const (
	KindUserMenu     Kind = "user_menu"
	KindAdminMenu    Kind = "admin_menu"
	KindDashboard    Kind = "dashboard"
	KindMyTickets    Kind = "my_tickets"
	KindOwners       Kind = "owners"
	KindTicketDetail Kind = "ticket_detail"
)

// ID identifies a navigable screen. IDs are comparable so the navigation
// stack can deduplicate consecutive pushes.
type ID struct {
	Kind     Kind
	Category string
	TicketID string
	Page     int
	Status   model.TicketStatus
}

// Screen is a fully computed view ready for the transport.
type Screen struct {
	Text     string
	Keyboard transport.Keyboard
	Media    *model.MediaRef
}
