package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"wordloop/internal/domain"
	"wordloop/internal/notify"
	"wordloop/internal/review"
	"wordloop/internal/timer"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Messenger is the part of the bot API the card and notification views use.
// *tele.Bot satisfies it.
type Messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// CardView draws a review session as one chat message that is edited in place
type CardView struct {
	messenger Messenger
	chatID    int64
	logger    *zap.Logger

	mu  sync.Mutex
	msg *tele.StoredMessage
}

// NewCardView creates a card view for a chat
func NewCardView(messenger Messenger, chatID int64, logger *zap.Logger) *CardView {
	return &CardView{
		messenger: messenger,
		chatID:    chatID,
		logger:    logger,
	}
}

// Render edits the card message, or sends a new one when there is none or
// the edit fails
func (v *CardView) Render(card review.Card) error {
	text, markup := formatCard(card)
	var opts []interface{}
	if markup != nil {
		opts = append(opts, markup)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.msg != nil {
		_, err := v.messenger.Edit(v.msg, text, opts...)
		if err == nil || isNotModified(err) {
			return nil
		}
		v.logger.Warn("Failed to edit card, sending new",
			zap.Int64("chat_id", v.chatID),
			zap.Error(err),
		)
	}

	msg, err := v.messenger.Send(tele.ChatID(v.chatID), text, opts...)
	if err != nil {
		return fmt.Errorf("failed to send card: %w", err)
	}
	v.msg = &tele.StoredMessage{MessageID: strconv.Itoa(msg.ID), ChatID: v.chatID}
	return nil
}

// Detach makes the next render send a new card message
func (v *CardView) Detach() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.msg = nil
}

// NoticeSink shows notifications as separate chat messages
type NoticeSink struct {
	messenger Messenger
	chatID    int64
}

// NewNoticeSink creates a notification sink for a chat
func NewNoticeSink(messenger Messenger, chatID int64) *NoticeSink {
	return &NoticeSink{messenger: messenger, chatID: chatID}
}

// Display sends the notification message
func (s *NoticeSink) Display(message string, severity notify.Severity) (notify.Handle, error) {
	msg, err := s.messenger.Send(tele.ChatID(s.chatID), severityIcon(severity)+" "+message, tele.Silent)
	if err != nil {
		return 0, fmt.Errorf("failed to send notification: %w", err)
	}
	return notify.Handle(msg.ID), nil
}

// Remove deletes a notification message
func (s *NoticeSink) Remove(h notify.Handle) error {
	err := s.messenger.Delete(&tele.StoredMessage{MessageID: strconv.Itoa(int(h)), ChatID: s.chatID})
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}

// SessionConfig holds what every new review session is built with
type SessionConfig struct {
	Review    review.Config
	NotifyTTL time.Duration
}

// NewSessionFactory builds review sessions that draw into their own chat
func NewSessionFactory(
	ctx context.Context,
	messenger Messenger,
	backend review.Backend,
	cfg SessionConfig,
	logger *zap.Logger,
) review.Factory {
	return func(chatID int64) *review.Controller {
		log := logger.With(zap.Int64("chat_id", chatID))
		notifier := notify.NewNotifier(NewNoticeSink(messenger, chatID), timer.Real{}, cfg.NotifyTTL, log)
		return review.NewController(
			ctx,
			backend,
			NewCardView(messenger, chatID, log),
			notifier,
			timer.Real{},
			cfg.Review,
			log,
		)
	}
}

func severityIcon(severity notify.Severity) string {
	switch severity {
	case notify.SeveritySuccess:
		return "✅"
	case notify.SeverityError:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

// formatCard renders a card as message text and its inline keyboard.
// A nil keyboard removes the buttons when the message is edited.
func formatCard(card review.Card) (string, *tele.ReplyMarkup) {
	switch card.State {
	case review.StateIdle, review.StateLoading:
		return "⏳ " + card.Headline, nil

	case review.StateEmpty:
		markup := &tele.ReplyMarkup{}
		markup.Inline(
			markup.Row(markup.Data("🔄 Проверить снова", btnNext.Unique)),
			markup.Row(btnMainMenu),
		)
		return "🎉 " + card.Headline, markup

	case review.StateFailed:
		markup := &tele.ReplyMarkup{}
		markup.Inline(
			markup.Row(markup.Data("🔄 Повторить", btnNext.Unique)),
			markup.Row(btnMainMenu),
		)
		return "⚠️ " + card.Headline, markup
	}

	var b strings.Builder
	b.WriteString("📝 ")
	b.WriteString(card.Headline)

	if !card.ShowTranslations {
		b.WriteString("\n\nВспомни перевод и нажми «Показать перевод».")
	} else {
		b.WriteString("\n")
		for _, line := range card.Translations {
			fmt.Fprintf(&b, "\n%s: %s", line.Provider.Title(), line.Text)
		}
		if card.CanRate {
			b.WriteString("\n\nНасколько хорошо ты помнил слово?")
		}
	}

	markup := &tele.ReplyMarkup{}
	var rows []tele.Row
	switch {
	case card.CanReveal:
		rows = append(rows, markup.Row(btnReveal), markup.Row(btnNext))
	case card.CanRate:
		rows = append(rows, rateRows(markup, card.WordID)...)
	default:
		return b.String(), nil
	}
	markup.Inline(rows...)
	return b.String(), markup
}

// rateRows lays out the six quality buttons in two rows
func rateRows(markup *tele.ReplyMarkup, wordID int64) []tele.Row {
	id := strconv.FormatInt(wordID, 10)
	btns := make([]tele.Btn, 0, len(domain.Qualities))
	for _, q := range domain.Qualities {
		btns = append(btns, markup.Data(q.Label(), btnRate.Unique, id, strconv.Itoa(int(q))))
	}
	return markup.Split(3, btns)
}
