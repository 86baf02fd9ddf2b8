package middleware

import (
	"strings"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	PasswordPrompt = "Привет! Это бот для повторения слов. Введи пароль, чтобы продолжить:"
	ErrorReply     = "Произошла ошибка. Попробуйте позже."
)

// Gatekeeper reports whether a user may use the bot
type Gatekeeper interface {
	Allowed(userID int64) (bool, error)
}

// AuthMiddleware keeps unauthorized users out of everything but /start and
// password entry
func AuthMiddleware(auth Gatekeeper, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			authorized, err := auth.Allowed(sender.ID)
			if err != nil {
				logger.Error("Failed to check authorization in middleware",
					zap.Int64("user_id", sender.ID),
					zap.Error(err),
				)
				return reply(c, ErrorReply)
			}

			if authorized || isLoginAttempt(c) {
				return next(c)
			}

			return reply(c, PasswordPrompt)
		}
	}
}

// isLoginAttempt matches /start and plain text, which may carry the password
func isLoginAttempt(c tele.Context) bool {
	if c.Callback() != nil || c.Message() == nil {
		return false
	}
	text := strings.TrimSpace(c.Text())
	return text == "/start" || (text != "" && !strings.HasPrefix(text, "/"))
}

// reply answers callbacks with an alert and messages with a message
func reply(c tele.Context, text string) error {
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Send(text)
}
