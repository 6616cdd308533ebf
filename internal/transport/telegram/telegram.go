// Package telegram adapts the Telegram Bot API to the transport seam.
package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"support-bot-backend/internal/action"
	"support-bot-backend/internal/model"
	"support-bot-backend/internal/transport"
)

type Adapter struct {
	api *tgbotapi.BotAPI
}

func New(token string) (*Adapter, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Adapter{api: api}, nil
}

// Run long-polls for updates and feeds them to the handler until the context
// is cancelled. Each update is handled on its own goroutine so a slow store
// call never stalls the poll loop.
func (a *Adapter) Run(ctx context.Context, handler transport.Handler) {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := a.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			a.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			a.dispatch(ctx, handler, update)
		}
	}
}

func (a *Adapter) dispatch(ctx context.Context, handler transport.Handler, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		parsed, err := action.Parse(cb.Data)
		if err != nil {
			log.Printf("drop callback %q: %v", cb.Data, err)
			parsed = action.Action{Kind: action.KindNoop}
		}
		ev := transport.ActionEvent{
			ActionID: cb.ID,
			From:     cb.From.ID,
			Action:   parsed,
		}
		if cb.Message != nil {
			ev.Location = transport.Location{ChatID: cb.Message.Chat.ID, MessageID: cb.Message.MessageID}
		}
		go handler.HandleAction(ctx, ev)

	case update.Message != nil:
		msg := update.Message
		ev := transport.SubmissionEvent{
			From:   msg.From.ID,
			ChatID: msg.Chat.ID,
			Text:   msg.Text,
			Media:  extractMedia(msg),
		}
		if ev.Text == "" {
			ev.Text = msg.Caption
		}
		if msg.IsCommand() {
			ev.Command = msg.Command()
			ev.Args = msg.CommandArguments()
		}
		go handler.HandleSubmission(ctx, ev)
	}
}

func extractMedia(msg *tgbotapi.Message) *model.MediaRef {
	if len(msg.Photo) > 0 {
		// Telegram sends every available size; the last one is the largest.
		return &model.MediaRef{Kind: model.MediaKindPhoto, FileID: msg.Photo[len(msg.Photo)-1].FileID}
	}
	if msg.Video != nil {
		return &model.MediaRef{Kind: model.MediaKindVideo, FileID: msg.Video.FileID}
	}
	return nil
}

func (a *Adapter) SendText(ctx context.Context, recipient int64, text string, kb transport.Keyboard) error {
	msg := tgbotapi.NewMessage(recipient, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup, ok := toMarkup(kb); ok {
		msg.ReplyMarkup = markup
	}
	_, err := a.api.Send(msg)
	return err
}

func (a *Adapter) SendMedia(ctx context.Context, recipient int64, media model.MediaRef, caption string, kb transport.Keyboard) error {
	var chattable tgbotapi.Chattable
	switch media.Kind {
	case model.MediaKindVideo:
		video := tgbotapi.NewVideo(recipient, tgbotapi.FileID(media.FileID))
		video.Caption = caption
		video.ParseMode = tgbotapi.ModeMarkdown
		if markup, ok := toMarkup(kb); ok {
			video.ReplyMarkup = markup
		}
		chattable = video
	default:
		photo := tgbotapi.NewPhoto(recipient, tgbotapi.FileID(media.FileID))
		photo.Caption = caption
		photo.ParseMode = tgbotapi.ModeMarkdown
		if markup, ok := toMarkup(kb); ok {
			photo.ReplyMarkup = markup
		}
		chattable = photo
	}
	_, err := a.api.Send(chattable)
	return err
}

func (a *Adapter) SendMediaBatch(ctx context.Context, recipient int64, items []model.MediaRef) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return a.SendMedia(ctx, recipient, items[0], "", nil)
	}
	group := make([]interface{}, 0, len(items))
	for _, item := range items {
		switch item.Kind {
		case model.MediaKindVideo:
			group = append(group, tgbotapi.NewInputMediaVideo(tgbotapi.FileID(item.FileID)))
		default:
			group = append(group, tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(item.FileID)))
		}
	}
	_, err := a.api.SendMediaGroup(tgbotapi.NewMediaGroup(recipient, group))
	return err
}

// EditView rewrites a rendered message in place. Telegram refuses edits that
// change the message type, so failures cascade: text edit, then caption edit,
// then delete and resend.
func (a *Adapter) EditView(ctx context.Context, loc transport.Location, text string, media *model.MediaRef, kb transport.Keyboard) error {
	markup, hasMarkup := toMarkup(kb)

	if media == nil {
		edit := tgbotapi.NewEditMessageText(loc.ChatID, loc.MessageID, text)
		edit.ParseMode = tgbotapi.ModeMarkdown
		if hasMarkup {
			edit.ReplyMarkup = &markup
		}
		if _, err := a.api.Send(edit); err == nil {
			return nil
		}

		caption := tgbotapi.NewEditMessageCaption(loc.ChatID, loc.MessageID, text)
		caption.ParseMode = tgbotapi.ModeMarkdown
		if hasMarkup {
			caption.ReplyMarkup = &markup
		}
		if _, err := a.api.Send(caption); err == nil {
			return nil
		}

		a.delete(loc)
		return a.SendText(ctx, loc.ChatID, text, kb)
	}

	edit := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{
			ChatID:    loc.ChatID,
			MessageID: loc.MessageID,
		},
		Media: inputMedia(*media, text),
	}
	if hasMarkup {
		edit.ReplyMarkup = &markup
	}
	if _, err := a.api.Request(edit); err == nil {
		return nil
	}

	a.delete(loc)
	return a.SendMedia(ctx, loc.ChatID, *media, text, kb)
}

func (a *Adapter) Acknowledge(ctx context.Context, actionID, toast string) error {
	_, err := a.api.Request(tgbotapi.NewCallback(actionID, toast))
	return err
}

func (a *Adapter) delete(loc transport.Location) {
	if _, err := a.api.Request(tgbotapi.NewDeleteMessage(loc.ChatID, loc.MessageID)); err != nil {
		log.Printf("delete message %d/%d: %v", loc.ChatID, loc.MessageID, err)
	}
}

func inputMedia(media model.MediaRef, caption string) interface{} {
	switch media.Kind {
	case model.MediaKindVideo:
		input := tgbotapi.NewInputMediaVideo(tgbotapi.FileID(media.FileID))
		input.Caption = caption
		input.ParseMode = tgbotapi.ModeMarkdown
		return input
	default:
		input := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(media.FileID))
		input.Caption = caption
		input.ParseMode = tgbotapi.ModeMarkdown
		return input
	}
}

func toMarkup(kb transport.Keyboard) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(kb) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			if b.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(b.Label, b.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Encode()))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}
