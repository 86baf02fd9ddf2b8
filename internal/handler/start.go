package handler

import (
	"wordloop/internal/middleware"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const helpText = `📖 Как это работает

Бот показывает слова, которые пора повторить. Вспомни перевод, нажми «Показать перевод» и оцени, насколько хорошо ты его помнил: от 0 (забыл) до 5 (идеально).

Команды:
/next — следующее слово
/add <url> — добавить слова со страницы
/words — все слова
/stats — статистика
/clear — удалить все слова
/logout — выйти`

// handleStart handles /start command and the main menu button
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	authorized, err := h.authService.Allowed(userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(middleware.ErrorReply)
	}

	h.ResetState(userID)
	if !authorized {
		return c.Send(middleware.PasswordPrompt)
	}
	return h.editOrSend(c, mainMenuText, mainMenuMarkup())
}

// handleHelp explains the review loop and lists commands
func (h *Handler) handleHelp(c tele.Context) error {
	return c.Send(helpText, mainMenuMarkup())
}

// handleLogout revokes the user's access and stops their session timers
func (h *Handler) handleLogout(c tele.Context) error {
	userID := c.Sender().ID

	if err := h.authService.Logout(userID); err != nil {
		h.logger.Error("Failed to revoke access", zap.Int64("user_id", userID), zap.Error(err))
		return c.Send(middleware.ErrorReply)
	}

	h.ForgetUser(userID)
	h.sessions.Remove(chatID(c))

	h.logger.Info("User logged out", zap.Int64("user_id", userID))
	return c.Send("👋 Доступ отозван. Чтобы вернуться, снова введи пароль.")
}
