package handler

import (
	"context"
	"sync"

	"wordloop/internal/domain"
	"wordloop/internal/middleware"
	"wordloop/internal/review"
	"wordloop/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Handler manages all bot interactions
type Handler struct {
	bot         *tele.Bot
	authService *service.AuthService
	library     *service.LibraryService
	sessions    *review.Registry
	limiter     *middleware.RateLimiter
	logger      *zap.Logger

	// Base context for backend calls; cancelled on shutdown
	ctx context.Context

	// User states (in-memory state machine)
	states   map[int64]*domain.StateData
	stateMux sync.RWMutex
}

// NewHandler creates a new handler instance
func NewHandler(
	ctx context.Context,
	bot *tele.Bot,
	authService *service.AuthService,
	library *service.LibraryService,
	sessions *review.Registry,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		bot:         bot,
		authService: authService,
		library:     library,
		sessions:    sessions,
		limiter:     limiter,
		logger:      logger,
		ctx:         ctx,
		states:      make(map[int64]*domain.StateData),
	}
}

// RegisterHandlers registers middleware and all bot handlers
func (h *Handler) RegisterHandlers() {
	// Middleware must be installed before any Handle call to apply
	h.bot.Use(
		h.limiter.Middleware(h.logger),
		middleware.AuthMiddleware(h.authService, h.logger),
	)

	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/help", h.handleHelp)
	h.bot.Handle("/next", h.handleNext)
	h.bot.Handle("/add", h.handleAddWords)
	h.bot.Handle("/words", h.handleWords)
	h.bot.Handle("/stats", h.handleStats)
	h.bot.Handle("/clear", h.handleClear)
	h.bot.Handle("/logout", h.handleLogout)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// Callback queries (inline buttons)
	h.bot.Handle(&btnNext, h.handleNext)
	h.bot.Handle(&btnReveal, h.handleReveal)
	h.bot.Handle(&btnRate, h.handleRate)
	h.bot.Handle(&btnAddWords, h.handleAddWords)
	h.bot.Handle(&btnWords, h.handleWords)
	h.bot.Handle(&btnStats, h.handleStats)
	h.bot.Handle(&btnClear, h.handleClear)
	h.bot.Handle(&btnClearConfirm, h.handleClearConfirm)
	h.bot.Handle(&btnCancel, h.handleCancel)
	h.bot.Handle(&btnMainMenu, h.handleStart)

	// Generic callback handler for dynamic data
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// GetState returns user's current state
func (h *Handler) GetState(userID int64) *domain.StateData {
	h.stateMux.RLock()
	defer h.stateMux.RUnlock()

	state, exists := h.states[userID]
	if !exists {
		return &domain.StateData{State: domain.StateIdle}
	}
	return state
}

// SetState sets user's state
func (h *Handler) SetState(userID int64, state *domain.StateData) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	h.states[userID] = state
}

// ResetState resets user to idle state
func (h *Handler) ResetState(userID int64) {
	h.SetState(userID, &domain.StateData{State: domain.StateIdle})
}

// ForgetUser drops the text-input state of a user whose session was evicted
func (h *Handler) ForgetUser(userID int64) {
	h.stateMux.Lock()
	defer h.stateMux.Unlock()
	delete(h.states, userID)
}

// session returns the review session of the chat the update came from
func (h *Handler) session(c tele.Context) *review.Controller {
	return h.sessions.Get(chatID(c))
}

func chatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	return c.Sender().ID
}

// Inline keyboard buttons
var (
	btnNext = tele.Btn{
		Unique: "next",
		Text:   "▶️ Следующее слово",
	}
	btnReveal = tele.Btn{
		Unique: "reveal",
		Text:   "👀 Показать перевод",
	}
	// Rating buttons are built per word; data is "<word id>|<quality>"
	btnRate = tele.Btn{
		Unique: "rate",
	}
	btnAddWords = tele.Btn{
		Unique: "add_words",
		Text:   "➕ Добавить слова",
	}
	btnWords = tele.Btn{
		Unique: "words",
		Text:   "📚 Все слова",
	}
	btnStats = tele.Btn{
		Unique: "stats",
		Text:   "📊 Статистика",
	}
	btnClear = tele.Btn{
		Unique: "clear",
		Text:   "🗑 Удалить все слова",
	}
	btnClearConfirm = tele.Btn{
		Unique: "clear_confirm",
		Text:   "✅ Да, удалить всё",
	}
	btnCancel = tele.Btn{
		Unique: "cancel",
		Text:   "❌ Отменить",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🏠 Главное меню",
	}
)

const mainMenuText = "🏠 Главное меню\n\nВыберите действие:"

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(
		menu.Row(btnNext),
		menu.Row(btnAddWords, btnWords),
		menu.Row(btnStats, btnClear),
	)
	return menu
}

// backMarkup returns a keyboard with a single main menu button
func backMarkup() *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnMainMenu))
	return markup
}
