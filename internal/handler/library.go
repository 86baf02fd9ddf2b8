package handler

import (
	"fmt"
	"strings"
	"time"

	"wordloop/internal/backend"
	"wordloop/internal/domain"
	"wordloop/internal/notify"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Telegram rejects longer messages
const maxMessageLength = 4096

// handleAddWords asks for a page address, or processes one given as /add <url>
func (h *Handler) handleAddWords(c tele.Context) error {
	userID := c.Sender().ID

	if msg := c.Message(); c.Callback() == nil && msg != nil && strings.TrimSpace(msg.Payload) != "" {
		return h.addFromURL(c, msg.Payload)
	}

	h.SetState(userID, &domain.StateData{State: domain.StateWaitingURL})

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnCancel))

	return h.editOrSend(c, "🔗 Пришли ссылку на страницу, из которой нужно взять слова:", markup)
}

// handleWords shows the whole word base
func (h *Handler) handleWords(c tele.Context) error {
	words, err := h.library.Words(h.ctx)
	if err != nil {
		h.session(c).Notify(
			backend.UserMessage(err, "Ошибка при загрузке слов", "Ошибка при загрузке слов"),
			notify.SeverityError,
		)
		return respond(c)
	}

	if len(words) == 0 {
		return h.editOrSend(c, "📚 Нет слов в базе данных", backMarkup())
	}

	chunks := chunkLines(formatWords(words, time.Now()), maxMessageLength)
	if err := respond(c); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}
	for i, chunk := range chunks {
		var opts []interface{}
		if i == len(chunks)-1 {
			opts = append(opts, backMarkup())
		}
		if err := c.Send(chunk, opts...); err != nil {
			return err
		}
	}
	return nil
}

// handleStats shows the study statistics
func (h *Handler) handleStats(c tele.Context) error {
	stats, err := h.library.Stats(h.ctx)
	if err != nil {
		h.session(c).Notify(
			backend.UserMessage(err, "Ошибка при загрузке статистики", "Ошибка при загрузке статистики"),
			notify.SeverityError,
		)
		return respond(c)
	}
	return h.editOrSend(c, formatStats(stats), backMarkup())
}

// handleClear asks for confirmation before deleting every word
func (h *Handler) handleClear(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnClearConfirm, btnCancel))
	return h.editOrSend(c, "🗑 Удалить все слова? Это действие нельзя отменить.", markup)
}

// handleClearConfirm deletes every word
func (h *Handler) handleClearConfirm(c tele.Context) error {
	ctrl := h.session(c)

	msg, err := h.library.Clear(h.ctx, c.Sender().ID)
	if err != nil {
		ctrl.Notify(
			backend.UserMessage(err, "Ошибка при удалении слов", "Ошибка при удалении слов"),
			notify.SeverityError,
		)
		return h.editOrSend(c, mainMenuText, mainMenuMarkup())
	}

	if msg == "" {
		msg = "Все слова удалены"
	}
	ctrl.Notify(msg, notify.SeveritySuccess)
	return h.editOrSend(c, mainMenuText, mainMenuMarkup())
}

// respond acknowledges a callback; commands need nothing
func respond(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond()
}

// formatWords renders one entry per word
func formatWords(words []domain.Word, now time.Time) []string {
	entries := make([]string, 0, len(words)+1)
	entries = append(entries, fmt.Sprintf("📚 Все слова (%d):", len(words)))

	for _, w := range words {
		var b strings.Builder
		fmt.Fprintf(&b, "📝 %s", w.Name)
		for _, p := range domain.Providers {
			text, ok := w.Translation(p)
			if !ok {
				text = "Нет перевода"
			}
			fmt.Fprintf(&b, "\n%s: %s", p.Title(), text)
		}
		fmt.Fprintf(&b, "\nСложность: %d · Повторений: %d · Следующее повторение: %s",
			w.DifficultyLevel,
			w.ReviewCount,
			domain.DisplayReviewDate(w.NextReviewDate, now),
		)
		entries = append(entries, b.String())
	}
	return entries
}

// chunkLines joins entries with blank lines into messages of at most limit
// bytes. An entry longer than limit is cut.
func chunkLines(entries []string, limit int) []string {
	var chunks []string
	var b strings.Builder

	for _, entry := range entries {
		if len(entry) > limit {
			entry = truncate(entry, limit)
		}
		if b.Len() > 0 && b.Len()+2+len(entry) > limit {
			chunks = append(chunks, b.String())
			b.Reset()
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(entry)
	}
	if b.Len() > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// truncate cuts s to at most limit bytes without splitting a rune
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := 0
	for i := range s {
		if i > limit {
			break
		}
		cut = i
	}
	return s[:cut]
}

func formatStats(s *domain.Stats) string {
	return fmt.Sprintf(
		"📊 Статистика\n\nВсего слов: %d\nК повторению: %d\nВыучено: %d\nСреднее число повторений: %.1f",
		s.TotalWords,
		s.DueWords,
		s.LearnedWords,
		s.AverageReviews,
	)
}
