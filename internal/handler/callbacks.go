package handler

import (
	"errors"
	"strconv"
	"strings"
	"unicode"

	"wordloop/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var errBadRateData = errors.New("malformed rating data")

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// parseRateData splits rating button data "<word id>|<quality>"
func parseRateData(data string) (int64, domain.Quality, error) {
	idStr, qStr, ok := strings.Cut(data, "|")
	if !ok {
		return 0, 0, errBadRateData
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, errBadRateData
	}
	quality, err := domain.ParseQuality(qStr)
	if err != nil {
		return 0, 0, err
	}
	return id, quality, nil
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
func (h *Handler) handleEditError(err error, c tele.Context, userID int64) error {
	if err == nil {
		return nil
	}

	// Already edited by another callback; don't send a new message
	if isNotModified(err) {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond()
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// editOrSend edits the message a button belongs to, or sends a new one for commands
func (h *Handler) editOrSend(c tele.Context, text string, opts ...interface{}) error {
	if c.Callback() == nil {
		return c.Send(text, opts...)
	}
	if err := c.Edit(text, opts...); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID); handleErr == nil {
			return nil // Message was already modified, just acknowledged
		}
		return c.Send(text, opts...)
	}
	return c.Respond()
}

// handleCallback handles callbacks that did not match a registered button
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		h.logger.Warn("handleCallback: callback is nil")
		return nil
	}

	// Clean data from all non-printable characters
	data := cleanCallbackData(callback.Data)
	h.logger.Info("handleCallback: Processing callback",
		zap.String("data", data),
		zap.String("id", callback.ID),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)

	// The pressed control is identified by its Unique; fall back to the data
	// for buttons whose Unique did not come through
	control := callback.Unique
	if control == "" {
		control, data, _ = strings.Cut(data, "|")
	}

	switch control {
	case btnNext.Unique:
		return h.handleNext(c)
	case btnReveal.Unique:
		return h.handleReveal(c)
	case btnRate.Unique:
		return h.rate(c, data)
	case btnAddWords.Unique:
		return h.handleAddWords(c)
	case btnWords.Unique:
		return h.handleWords(c)
	case btnStats.Unique:
		return h.handleStats(c)
	case btnClear.Unique:
		return h.handleClear(c)
	case btnClearConfirm.Unique:
		return h.handleClearConfirm(c)
	case btnCancel.Unique:
		return h.handleCancel(c)
	case btnMainMenu.Unique:
		return h.handleStart(c)
	}

	// If it's not handled, acknowledge it anyway
	h.logger.Warn("Unhandled callback in handleCallback",
		zap.String("data", data),
		zap.String("unique", callback.Unique),
	)
	return c.Respond()
}

// handleCancel cancels current operation and resets state
func (h *Handler) handleCancel(c tele.Context) error {
	h.ResetState(c.Sender().ID)
	return h.editOrSend(c, mainMenuText, mainMenuMarkup())
}
