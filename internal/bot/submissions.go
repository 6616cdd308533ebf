package bot

import (
	"context"
	"fmt"
	"log"
	"strings"

	"support-bot-backend/internal/action"
	"support-bot-backend/internal/events"
	"support-bot-backend/internal/jwt"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/queue"
	"support-bot-backend/internal/service/ticket"
	"support-bot-backend/internal/session"
	"support-bot-backend/internal/transport"
	"support-bot-backend/internal/view"
)

func (r *Router) HandleSubmission(ctx context.Context, ev transport.SubmissionEvent) {
	banned, err := r.tickets.IsBanned(ctx, ev.From)
	if err != nil {
		r.send(ctx, ev.ChatID, unavailableNotice, nil)
		return
	}
	if banned {
		submissionsTotal.WithLabelValues("banned").Inc()
		return
	}

	if ev.Command != "" {
		r.handleCommand(ctx, ev)
		return
	}

	sess := r.sessions.Get(ev.From)
	pending, ok := sess.Pending()
	if !ok {
		if answer, found := faqAnswer(ev.Text); found {
			submissionsTotal.WithLabelValues("faq").Inc()
			r.send(ctx, ev.ChatID, answer, nil)
			return
		}
		submissionsTotal.WithLabelValues("ignored").Inc()
		return
	}

	switch pending.State {
	case session.StateAwaitingTicketDescription:
		r.createTicket(ctx, ev, sess, pending)
	case session.StateAwaitingAdminReply:
		r.adminReply(ctx, ev, sess, pending)
	case session.StateAwaitingUserReply:
		r.userReply(ctx, ev, sess, pending)
	default:
		sess.ClearPending()
	}
}

func (r *Router) createTicket(ctx context.Context, ev transport.SubmissionEvent, sess *session.Session, pending session.Pending) {
	cat, ok := model.CategoryByKey(pending.Category)
	if !ok {
		sess.ClearPending()
		return
	}
	t, err := r.tickets.CreateTicket(ctx, ticket.CreateTicketParams{
		OwnerID:  ev.From,
		Category: cat,
		Text:     ev.Text,
		Media:    ev.Media,
	})
	if err != nil {
		switch ticket.CodeOf(err) {
		case ticket.ErrorCodeValidation:
			// Expectation stays armed; the next submission gets another shot.
			r.send(ctx, ev.ChatID, "📝 Please describe your issue in a text message, photo or video.", nil)
		case ticket.ErrorCodeBlocked:
			sess.ClearPending()
		default:
			r.send(ctx, ev.ChatID, unavailableNotice, nil)
		}
		submissionsTotal.WithLabelValues("ticket_failed").Inc()
		return
	}
	sess.ClearPending()
	ticketsCreated.Inc()
	submissionsTotal.WithLabelValues("ticket_created").Inc()

	r.send(ctx, ev.ChatID, fmt.Sprintf(
		"✅ *Ticket created!*\n\n🆔 `#%s`\n📂 %s %s\n\nOur team will reply as soon as possible.",
		t.ID, cat.Label(), cat.PriorityTag(),
	), nil)

	alert := fmt.Sprintf("%s *New ticket* `#%s` in %s from `%d`", cat.PriorityTag(), t.ID, cat.Label(), t.OwnerID)
	viewKB := transport.Keyboard{transport.Row(transport.Button{
		Label:  "👁 View",
		Action: action.Action{Kind: action.KindViewTicket, Category: t.Category, TicketID: t.ID, Page: 1, Status: model.TicketStatusOpen},
	})}
	for admin := range r.cfg.Admins {
		r.notify.Enqueue(queue.Job{Recipient: admin, Text: alert, Keyboard: viewKB})
	}
	if logChat, found := r.tickets.LogChannel(ctx); found {
		r.notify.Enqueue(queue.Job{Recipient: logChat, Text: alert})
	}

	r.record(ctx, events.Event{Type: events.TypeTicketCreated, TicketID: t.ID, Category: t.Category, Actor: ev.From})
}

func (r *Router) adminReply(ctx context.Context, ev transport.SubmissionEvent, sess *session.Session, pending session.Pending) {
	if !r.cfg.IsAdmin(ev.From) {
		sess.ClearPending()
		return
	}
	t, entry, err := r.tickets.AppendReply(ctx, pending.Category, pending.TicketID, model.ReplyRoleAdmin, ev.Text, ev.Media)
	if err != nil {
		sess.ClearPending()
		if ticket.CodeOf(err) == ticket.ErrorCodeNotFound {
			r.send(ctx, ev.ChatID, "❌ This ticket no longer exists.", nil)
			return
		}
		r.send(ctx, ev.ChatID, unavailableNotice, nil)
		return
	}
	sess.ClearPending()
	submissionsTotal.WithLabelValues("admin_reply").Inc()

	body := strings.TrimSpace(ev.Text)
	if body == "" {
		body = "📎 (attachment)"
	}
	r.notify.Enqueue(queue.Job{
		Recipient: t.OwnerID,
		Text:      fmt.Sprintf("📩 *Support replied to ticket* `#%s`:\n\n%s", t.ID, body),
		Keyboard: transport.Keyboard{transport.Row(transport.Button{
			Label:  "↩️ Reply",
			Action: action.Action{Kind: action.KindBeginUserReply, Category: t.Category, TicketID: t.ID},
		})},
	})

	r.send(ctx, ev.ChatID, "✅ Reply sent.", nil)
	r.showView(ctx, ev.From, pending.Origin, sess, view.ID{
		Kind:   view.KindDashboard,
		Page:   pending.ListPage,
		Status: pending.ListStatus,
	})
	r.record(ctx, events.Event{Type: events.TypeTicketReplied, TicketID: t.ID, Category: t.Category, Actor: ev.From, Detail: fmt.Sprintf("entry %d", entry.Index)})
}

func (r *Router) userReply(ctx context.Context, ev transport.SubmissionEvent, sess *session.Session, pending session.Pending) {
	t, entry, err := r.tickets.AppendReply(ctx, pending.Category, pending.TicketID, model.ReplyRoleUser, ev.Text, ev.Media)
	if err != nil {
		sess.ClearPending()
		if ticket.CodeOf(err) == ticket.ErrorCodeNotFound {
			r.send(ctx, ev.ChatID, "❌ This ticket no longer exists.", nil)
			return
		}
		r.send(ctx, ev.ChatID, unavailableNotice, nil)
		return
	}
	sess.ClearPending()
	submissionsTotal.WithLabelValues("user_reply").Inc()

	alert := fmt.Sprintf("📩 *New reply on ticket* `#%s` from `%d`", t.ID, t.OwnerID)
	viewKB := transport.Keyboard{transport.Row(transport.Button{
		Label:  "👁 View",
		Action: action.Action{Kind: action.KindViewTicket, Category: t.Category, TicketID: t.ID, Page: 1, Status: t.Status},
	})}
	for admin := range r.cfg.Admins {
		r.notify.Enqueue(queue.Job{Recipient: admin, Text: alert, Keyboard: viewKB})
	}

	r.send(ctx, ev.ChatID, "✅ Message sent to the support team.", nil)
	r.record(ctx, events.Event{Type: events.TypeTicketReplied, TicketID: t.ID, Category: t.Category, Actor: ev.From, Detail: fmt.Sprintf("entry %d", entry.Index)})
}

func (r *Router) handleCommand(ctx context.Context, ev transport.SubmissionEvent) {
	switch ev.Command {
	case "start":
		r.sessions.Evict(ev.From)
		sess := r.sessions.Get(ev.From)
		id, screen := view.MenuFor(r.cfg.IsAdmin(ev.From), r.offHours())
		r.send(ctx, ev.ChatID, screen.Text, screen.Keyboard)
		sess.SetView(id)

	case "broadcast":
		if !r.cfg.IsAdmin(ev.From) {
			return
		}
		r.broadcast(ctx, ev)

	case "dashboard":
		if !r.cfg.IsAdmin(ev.From) || r.cfg.OpsSecret == "" || r.cfg.OpsFeedURL == "" {
			return
		}
		token, err := jwt.CreateToken(ev.From, jwt.RoleOps, r.cfg.OpsSecret, r.now().Add(jwt.AccessTokenTTL).Unix())
		if err != nil {
			log.Printf("mint ops token for %d: %v", ev.From, err)
			r.send(ctx, ev.ChatID, unavailableNotice, nil)
			return
		}
		url := fmt.Sprintf("%s?token=%s", r.cfg.OpsFeedURL, token)
		r.send(ctx, ev.ChatID, "📡 *Live ticket feed*\nThe link is valid for 15 minutes.", transport.Keyboard{
			transport.Row(transport.Button{Label: "Open Feed", URL: url}),
		})

	default:
		// Unknown commands behave like plain text without expectations.
	}
}

// broadcast fans a message out to every distinct ticket owner. Deliveries go
// through the dispatcher; the summary waits for each outcome.
func (r *Router) broadcast(ctx context.Context, ev transport.SubmissionEvent) {
	text := strings.TrimSpace(ev.Args)
	if text == "" {
		r.send(ctx, ev.ChatID, "Usage: /broadcast <message>", nil)
		return
	}
	owners, err := r.tickets.Owners(ctx, "")
	if err != nil {
		r.send(ctx, ev.ChatID, unavailableNotice, nil)
		return
	}
	if len(owners) == 0 {
		r.send(ctx, ev.ChatID, "Nobody to broadcast to yet.", nil)
		return
	}

	body := "📢 *Announcement*\n\n" + text
	delivered := 0
	for _, owner := range owners {
		errc := make(chan error, 1)
		r.notify.Enqueue(queue.Job{Recipient: owner.OwnerID, Text: body, Errc: errc})
		if <-errc == nil {
			delivered++
		}
	}

	r.send(ctx, ev.ChatID, fmt.Sprintf("✅ Broadcast delivered to %d of %d users.", delivered, len(owners)), nil)
	r.record(ctx, events.Event{Type: events.TypeBroadcastSent, Actor: ev.From, Detail: fmt.Sprintf("%d recipients", delivered)})
}

func (r *Router) send(ctx context.Context, chatID int64, text string, kb transport.Keyboard) {
	if err := r.tp.SendText(ctx, chatID, text, kb); err != nil {
		log.Printf("send to %d: %v", chatID, err)
	}
}
