package handler

import (
	"errors"
	"strings"

	"wordloop/internal/backend"
	"wordloop/internal/domain"
	"wordloop/internal/middleware"
	"wordloop/internal/notify"
	"wordloop/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleText handles all text messages based on state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	text := strings.TrimSpace(c.Text())

	// Ignore commands (starting with /)
	if strings.HasPrefix(text, "/") {
		return nil
	}

	authorized, err := h.authService.Allowed(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(middleware.ErrorReply)
	}

	// If not authorized, the text is a password attempt
	if !authorized {
		ok, err := h.authService.Login(userID, text)
		if err != nil {
			h.logger.Error("Failed to authorize user", zap.Error(err))
			return c.Send(middleware.ErrorReply)
		}
		if !ok {
			return c.Send("❌ Неверный пароль")
		}

		h.logger.Info("User authorized", zap.Int64("user_id", userID))
		h.ResetState(userID)
		return c.Send("✅ Доступ разрешён!\n\n"+mainMenuText, mainMenuMarkup())
	}

	// User is authorized, handle based on state
	state := h.GetState(userID)

	switch state.State {
	case domain.StateWaitingURL:
		return h.addFromURL(c, text)
	default:
		return c.Send("Используй кнопки меню или /help", mainMenuMarkup())
	}
}

// addFromURL sends a page to the backend for word extraction. Input problems
// keep the chat waiting for another address.
func (h *Handler) addFromURL(c tele.Context, raw string) error {
	userID := c.Sender().ID
	ctrl := h.session(c)

	if _, err := h.library.ValidateURL(raw); err != nil {
		h.SetState(userID, &domain.StateData{State: domain.StateWaitingURL})
		ctrl.Notify(urlInputMessage(err), notify.SeverityError)
		return nil
	}

	h.ResetState(userID)
	ctrl.Notify("Обрабатываю URL...", notify.SeverityInfo)

	msg, err := h.library.AddFromURL(h.ctx, userID, raw)
	if err != nil {
		ctrl.Notify(urlInputMessage(err), notify.SeverityError)
		return nil
	}

	if msg == "" {
		msg = "Слова добавлены"
	}
	ctrl.Notify(msg, notify.SeveritySuccess)
	return c.Send("Что дальше?", mainMenuMarkup())
}

// urlInputMessage turns a URL ingestion failure into a learner-facing message
func urlInputMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrURLRequired):
		return "Пожалуйста, введите URL"
	case errors.Is(err, service.ErrInvalidURL):
		return "Пожалуйста, введите корректный URL"
	default:
		return backend.UserMessage(err, "Ошибка при обработке URL", "Ошибка сети")
	}
}
