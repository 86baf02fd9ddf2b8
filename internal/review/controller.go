package review

import (
	"context"
	"sync"
	"time"

	"wordloop/internal/backend"
	"wordloop/internal/domain"
	"wordloop/internal/notify"
	"wordloop/internal/timer"

	"go.uber.org/zap"
)

const (
	DefaultBackfillDelay = 2 * time.Second
	DefaultAdvanceDelay  = 1 * time.Second
)

// Backend is the part of the REST contract a review session needs
type Backend interface {
	NextWord(ctx context.Context) (*backend.NextWord, error)
	ReviewWord(ctx context.Context, wordID int64, quality domain.Quality) (string, error)
}

// Renderer draws the session card
type Renderer interface {
	Render(card Card) error
}

// Detacher is implemented by renderers that can start over on a new surface
type Detacher interface {
	Detach()
}

// Notifier shows transient messages to the learner
type Notifier interface {
	Show(message string, severity notify.Severity)
}

// Config holds the session's fixed delays
type Config struct {
	BackfillDelay time.Duration
	AdvanceDelay  time.Duration
}

// Controller runs one learner's review loop:
// fetch, display, back-fill translations, reveal, rate, advance.
//
// Every operation and timer callback runs under mu, so the slot and the card
// are only ever touched by one task at a time. Only the back-fill fetch runs
// outside the lock; its result is applied only if the same fetch is still
// current when it returns.
type Controller struct {
	backend  Backend
	view     Renderer
	notifier Notifier
	sched    timer.Scheduler
	cfg      Config
	logger   *zap.Logger

	// Context for fetches started by timers rather than by the learner
	baseCtx context.Context

	mu         sync.Mutex
	state      State
	slot       Slot
	card       Card
	generation uint64
	backfill   timer.Timer
	advance    timer.Timer
	closed     bool
}

// NewController creates an idle review session
func NewController(
	ctx context.Context,
	backend Backend,
	view Renderer,
	notifier Notifier,
	sched timer.Scheduler,
	cfg Config,
	logger *zap.Logger,
) *Controller {
	if cfg.BackfillDelay <= 0 {
		cfg.BackfillDelay = DefaultBackfillDelay
	}
	if cfg.AdvanceDelay <= 0 {
		cfg.AdvanceDelay = DefaultAdvanceDelay
	}
	return &Controller{
		backend:  backend,
		view:     view,
		notifier: notifier,
		sched:    sched,
		cfg:      cfg,
		logger:   logger,
		baseCtx:  ctx,
		state:    StateIdle,
		card:     Card{State: StateIdle},
	}
}

// State returns the current step of the session
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Card returns a copy of what is currently displayed
func (c *Controller) Card() Card {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.card.clone()
}

// Current returns the word in the slot
func (c *Controller) Current() (domain.Word, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slot.Word()
}

// Notify shows a message on the session's notification surface
func (c *Controller) Notify(message string, severity notify.Severity) {
	c.notifier.Show(message, severity)
}

// Detach makes the next render draw a new card instead of redrawing the
// current one, if the renderer supports it
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.view.(Detacher); ok {
		d.Detach()
	}
}

// Next fetches the next due word, dropping whatever was on display.
// A pending auto-advance is cancelled so that only one fetch follows.
func (c *Controller) Next(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.next(ctx)
}

// Reveal shows the translations and the rating controls.
// It returns false when there is no freshly displayed word.
func (c *Controller) Reveal() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state != StateDisplaying {
		return false
	}

	c.state = StateRevealed
	c.card.State = StateRevealed
	c.card.ShowTranslations = true
	c.card.CanReveal = false
	c.card.CanRate = true
	c.renderLocked()
	return true
}

// Answer submits a rating for wordID, the word the rating control was drawn for.
// Nothing is sent when no word is loaded, when it was already rated, or when
// the control belongs to an older word.
func (c *Controller) Answer(ctx context.Context, wordID int64, quality domain.Quality) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	current, ok := c.slot.Word()
	if !ok || c.slot.Answered() {
		c.logger.Debug("Ignoring rating without an open word",
			zap.Int64("word_id", wordID),
			zap.String("state", string(c.state)),
		)
		return
	}

	if wordID != current.ID {
		c.logger.Info("Ignoring rating for a stale word",
			zap.Int64("word_id", wordID),
			zap.Int64("current_word_id", current.ID),
		)
		c.notifier.Show(MessageStaleAnswer, notify.SeverityInfo)
		return
	}

	if c.state != StateRevealed {
		return
	}

	if !quality.Valid() {
		c.notifier.Show("Недопустимая оценка", notify.SeverityError)
		return
	}

	c.state = StateSubmitting
	c.card.State = StateSubmitting

	msg, err := c.backend.ReviewWord(ctx, current.ID, quality)
	if err != nil {
		c.logger.Warn("Failed to submit rating",
			zap.Int64("word_id", current.ID),
			zap.Int("quality", int(quality)),
			zap.Error(err),
		)
		c.state = StateRevealed
		c.card.State = StateRevealed
		c.notifier.Show(
			backend.UserMessage(err, "Ошибка при сохранении ответа", "Ошибка при сохранении ответа"),
			notify.SeverityError,
		)
		return
	}

	c.logger.Info("Rating submitted",
		zap.Int64("word_id", current.ID),
		zap.Int("quality", int(quality)),
	)

	c.slot.MarkAnswered()
	c.card.CanRate = false
	c.renderLocked()

	if msg == "" {
		msg = MessageAnswerSaved
	}
	c.notifier.Show(msg, notify.SeveritySuccess)

	gen := c.generation
	c.advance = c.sched.AfterFunc(c.cfg.AdvanceDelay, func() { c.runAdvance(gen) })
}

// Close stops pending timers; later operations do nothing
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimersLocked()
}

func (c *Controller) next(ctx context.Context) {
	c.stopTimersLocked()
	c.generation++
	c.slot.Clear()

	c.state = StateLoading
	c.card = Card{State: StateLoading, Headline: PlaceholderLoadingWord}
	c.renderLocked()

	res, err := c.backend.NextWord(ctx)
	if err != nil {
		c.logger.Warn("Failed to fetch next word", zap.Error(err))
		c.state = StateFailed
		c.card = Card{State: StateFailed, Headline: MessageLoadFailed}
		c.renderLocked()
		c.notifier.Show(
			backend.UserMessage(err, "Ошибка при получении слова", "Ошибка при получении слова"),
			notify.SeverityError,
		)
		return
	}

	if res.Word == nil {
		headline := res.Message
		if headline == "" {
			headline = MessageNothingDue
		}
		c.state = StateEmpty
		c.card = Card{State: StateEmpty, Headline: headline}
		c.renderLocked()
		return
	}

	w := *res.Word
	c.slot.Load(w)
	c.state = StateDisplaying
	c.card = Card{
		State:        StateDisplaying,
		WordID:       w.ID,
		Headline:     w.Name,
		Translations: wordLines(w, PlaceholderLoading),
		CanReveal:    true,
	}

	if w.MissingTranslations() {
		c.card.Translations = placeholderLines(PlaceholderTranslating)
		gen, id := c.generation, w.ID
		c.backfill = c.sched.AfterFunc(c.cfg.BackfillDelay, func() { c.runBackfill(id, gen) })
	}

	c.logger.Debug("Word displayed",
		zap.Int64("word_id", w.ID),
		zap.Bool("backfill", c.backfill != nil),
	)
	c.renderLocked()
}

// runBackfill refetches the next word once to fill in translations that were
// missing when the word was displayed
func (c *Controller) runBackfill(id int64, gen uint64) {
	c.mu.Lock()
	if !c.ownsLocked(id, gen) {
		c.mu.Unlock()
		c.logger.Debug("Discarding stale translation back-fill", zap.Int64("word_id", id))
		return
	}
	c.backfill = nil
	first, _ := c.slot.Word()
	c.mu.Unlock()

	res, err := c.backend.NextWord(c.baseCtx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.ownsLocked(id, gen) {
		c.logger.Debug("Discarding translation back-fill for a replaced word", zap.Int64("word_id", id))
		return
	}

	var second *domain.Word
	if err != nil {
		c.logger.Warn("Translation back-fill failed", zap.Int64("word_id", id), zap.Error(err))
		c.notifier.Show(
			backend.UserMessage(err, "Ошибка при обновлении переводов", "Ошибка при обновлении переводов"),
			notify.SeverityError,
		)
	} else {
		second = res.Word
	}

	if second != nil && second.ID != id {
		c.logger.Info("Translation back-fill returned another word",
			zap.Int64("word_id", id),
			zap.Int64("returned_word_id", second.ID),
		)
	}

	lines := make([]TranslationLine, 0, len(domain.Providers))
	patch := make(map[domain.Provider]string)
	for _, p := range domain.Providers {
		var text string
		var ok bool
		if second != nil {
			text, ok = second.Translation(p)
		}
		if !ok {
			text, ok = first.Translation(p)
		}
		if !ok {
			text = PlaceholderTranslationError
		} else {
			patch[p] = text
		}
		lines = append(lines, TranslationLine{Provider: p, Text: text})
	}

	if second != nil && second.ID == id {
		c.slot.PatchTranslations(id, patch)
	}
	c.card.Translations = lines
	c.renderLocked()
}

func (c *Controller) runAdvance(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		return
	}
	c.advance = nil
	c.next(c.baseCtx)
}

// ownsLocked reports whether the task created for (id, gen) still targets the
// word on display
func (c *Controller) ownsLocked(id int64, gen uint64) bool {
	return !c.closed && gen == c.generation && c.slot.ID() == id
}

func (c *Controller) stopTimersLocked() {
	if c.backfill != nil {
		c.backfill.Stop()
		c.backfill = nil
	}
	if c.advance != nil {
		c.advance.Stop()
		c.advance = nil
	}
}

func (c *Controller) renderLocked() {
	if err := c.view.Render(c.card.clone()); err != nil {
		c.logger.Warn("Failed to render review card",
			zap.String("state", string(c.state)),
			zap.Error(err),
		)
	}
}
