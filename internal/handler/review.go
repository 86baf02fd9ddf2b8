package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleNext fetches the next due word into the chat's review card.
// From a command the card is started as a new message at the bottom of the chat.
func (h *Handler) handleNext(c tele.Context) error {
	ctrl := h.session(c)
	if c.Callback() == nil {
		ctrl.Detach()
	} else if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}

	ctrl.Next(h.ctx)
	return nil
}

// handleReveal shows the translations of the displayed word
func (h *Handler) handleReveal(c tele.Context) error {
	if !h.session(c).Reveal() {
		return c.Respond(&tele.CallbackResponse{Text: "Сначала загрузи слово"})
	}
	return c.Respond()
}

// handleRate submits the rating carried by the pressed button
func (h *Handler) handleRate(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}
	return h.rate(c, cleanCallbackData(callback.Data))
}

func (h *Handler) rate(c tele.Context, data string) error {
	wordID, quality, err := parseRateData(data)
	if err != nil {
		h.logger.Warn("Malformed rating button",
			zap.String("data", data),
			zap.Int64("user_id", c.Sender().ID),
			zap.Error(err),
		)
		return c.Respond(&tele.CallbackResponse{Text: "Неверная оценка"})
	}

	if err := c.Respond(); err != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(err))
	}

	h.session(c).Answer(h.ctx, wordID, quality)
	return nil
}
