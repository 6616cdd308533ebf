package view

import (
	"fmt"
	"strings"

	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
	"support-bot-backend/utils"
)

// Transcript renders the linear thread of a ticket: the origin message
// (implicit index 0, authored by the owner) followed by every history entry
// in stored order. Media lines carry the same index a fetch action uses, so
// the mapping stays stable for the ticket's lifetime.
func Transcript(t model.TicketItem) string {
	cat, _ := model.CategoryByKey(t.Category)

	var b strings.Builder
	fmt.Fprintf(&b, "🆔 *#%s* | %s\n", t.ID, cat.PriorityTag())
	fmt.Fprintf(&b, "👤 `USER:%d`\n", t.OwnerID)
	fmt.Fprintf(&b, "📂 %s | `%s`\n\n", cat.Label(), t.Status)

	fmt.Fprintf(&b, "📝 %s", utils.EscapeMarkdown(t.OriginText))
	if t.OriginMedia != nil {
		fmt.Fprintf(&b, " 📎`#0`")
	}

	for _, entry := range t.History {
		icon := "👤"
		if entry.Role == model.ReplyRoleAdmin {
			icon = "🤖"
		}
		fmt.Fprintf(&b, "\n\n%s *%s:* %s", icon, strings.ToUpper(string(entry.Role)), utils.EscapeMarkdown(entry.Text))
		if entry.Media != nil {
			fmt.Fprintf(&b, " 📎`#%d`", entry.Index)
		}
	}

	return b.String()
}

// MediaByIndex returns the attachment with the given thread index; index 0
// is the origin message. The bool reports whether that index carries media.
func MediaByIndex(t model.TicketItem, index int) (model.MediaRef, bool) {
	if index == 0 {
		if t.OriginMedia == nil {
			return model.MediaRef{}, false
		}
		return *t.OriginMedia, true
	}
	for _, entry := range t.History {
		if entry.Index == index {
			if entry.Media == nil {
				return model.MediaRef{}, false
			}
			return *entry.Media, true
		}
	}
	return model.MediaRef{}, false
}

// AllMedia returns every attachment of the thread in index order.
func AllMedia(t model.TicketItem) []model.MediaRef {
	var out []model.MediaRef
	if t.OriginMedia != nil {
		out = append(out, *t.OriginMedia)
	}
	for _, entry := range t.History {
		if entry.Media != nil {
			out = append(out, *entry.Media)
		}
	}
	return out
}

// ChunkMedia splits attachments into transport-sized batches.
func ChunkMedia(items []model.MediaRef) [][]model.MediaRef {
	if len(items) == 0 {
		return nil
	}
	var chunks [][]model.MediaRef
	for len(items) > transport.MaxMediaBatch {
		chunks = append(chunks, items[:transport.MaxMediaBatch])
		items = items[transport.MaxMediaBatch:]
	}
	return append(chunks, items)
}

// MediaIndexes lists the thread indexes that carry an attachment, origin
// included.
func MediaIndexes(t model.TicketItem) []int {
	var out []int
	if t.OriginMedia != nil {
		out = append(out, 0)
	}
	for _, entry := range t.History {
		if entry.Media != nil {
			out = append(out, entry.Index)
		}
	}
	return out
}
