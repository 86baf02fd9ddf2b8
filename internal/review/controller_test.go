package review

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wordloop/internal/backend"
	"wordloop/internal/domain"
	"wordloop/internal/notify"
	"wordloop/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingView struct {
	mu    sync.Mutex
	cards []Card
}

func (v *recordingView) Render(card Card) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.cards = append(v.cards, card)
	return nil
}

func (v *recordingView) last() Card {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cards[len(v.cards)-1]
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notify.Notice
}

func (n *recordingNotifier) Show(message string, severity notify.Severity) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notify.Notice{Message: message, Severity: severity})
}

func (n *recordingNotifier) all() []notify.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.Notice(nil), n.notices...)
}

type fixture struct {
	backend  *testutil.MockBackend
	view     *recordingView
	notifier *recordingNotifier
	sched    *testutil.FakeScheduler
	ctrl     *Controller
}

func newFixture() *fixture {
	f := &fixture{
		backend:  new(testutil.MockBackend),
		view:     &recordingView{},
		notifier: &recordingNotifier{},
		sched:    testutil.NewFakeScheduler(),
	}
	f.ctrl = NewController(
		context.Background(),
		f.backend,
		f.view,
		f.notifier,
		f.sched,
		Config{},
		testutil.NewTestLogger(),
	)
	return f
}

func completeWord(id int64, name string) *domain.Word {
	return testutil.NewTestWord(id, name, map[domain.Provider]string{
		domain.ProviderGoogle:   "g-" + name,
		domain.ProviderLingva:   "l-" + name,
		domain.ProviderMyMemory: "m-" + name,
	})
}

func TestController_NextWithCompleteWord(t *testing.T) {
	f := newFixture()
	word := completeWord(1, "house")
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(word), nil).Once()

	f.ctrl.Next(context.Background())

	assert.Equal(t, StateDisplaying, f.ctrl.State())
	current, ok := f.ctrl.Current()
	require.True(t, ok)
	assert.Equal(t, *word, current)

	card := f.ctrl.Card()
	assert.Equal(t, "house", card.Headline)
	assert.Equal(t, "g-house", card.Translation(domain.ProviderGoogle))
	assert.True(t, card.CanReveal)
	assert.False(t, card.ShowTranslations)
	assert.False(t, card.CanRate)
	assert.Empty(t, f.sched.Pending())

	// Loading placeholder is drawn before the word arrives
	assert.Equal(t, StateLoading, f.view.cards[0].State)
	assert.Equal(t, PlaceholderLoadingWord, f.view.cards[0].Headline)
	f.backend.AssertExpectations(t)
}

func TestController_TranslationBackfill(t *testing.T) {
	f := newFixture()
	first := testutil.NewTestWord(5, "casa", map[domain.Provider]string{
		domain.ProviderGoogle: "house",
	})
	second := testutil.NewTestWord(5, "casa", map[domain.Provider]string{
		domain.ProviderLingva: "home",
	})
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(first), nil).Once()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(second), nil).Once()

	f.ctrl.Next(context.Background())

	card := f.ctrl.Card()
	assert.Equal(t, "casa", card.Headline)
	for _, p := range domain.Providers {
		assert.Equal(t, PlaceholderTranslating, card.Translation(p))
	}
	assert.Equal(t, []time.Duration{DefaultBackfillDelay}, f.sched.Pending())

	f.sched.Advance(1999 * time.Millisecond)
	f.backend.AssertNumberOfCalls(t, "NextWord", 1)

	f.sched.Advance(time.Millisecond)
	f.backend.AssertNumberOfCalls(t, "NextWord", 2)

	card = f.ctrl.Card()
	assert.Equal(t, "house", card.Translation(domain.ProviderGoogle))
	assert.Equal(t, "home", card.Translation(domain.ProviderLingva))
	assert.Equal(t, PlaceholderTranslationError, card.Translation(domain.ProviderMyMemory))
	assert.Equal(t, StateDisplaying, f.ctrl.State())

	current, ok := f.ctrl.Current()
	require.True(t, ok)
	assert.Equal(t, "home", current.Translations[domain.ProviderLingva])
	assert.Empty(t, f.sched.Pending())
}

func TestController_BackfillFailureNeverLeavesTranslating(t *testing.T) {
	tests := []struct {
		name          string
		second        *backend.NextWord
		secondErr     error
		expectedError bool
	}{
		{
			name:          "transport error",
			secondErr:     &backend.TransportError{Op: "GET /next_word", Err: errors.New("timeout")},
			expectedError: true,
		},
		{
			name:   "nothing due anymore",
			second: testutil.NothingDue("No words due"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			first := testutil.NewTestWord(5, "casa", map[domain.Provider]string{
				domain.ProviderGoogle: "house",
			})
			f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(first), nil).Once()
			f.backend.On("NextWord", mock.Anything).Return(tt.second, tt.secondErr).Once()

			f.ctrl.Next(context.Background())
			f.sched.Advance(DefaultBackfillDelay)

			card := f.ctrl.Card()
			assert.Equal(t, "house", card.Translation(domain.ProviderGoogle))
			assert.Equal(t, PlaceholderTranslationError, card.Translation(domain.ProviderLingva))
			assert.Equal(t, PlaceholderTranslationError, card.Translation(domain.ProviderMyMemory))

			notices := f.notifier.all()
			if tt.expectedError {
				require.Len(t, notices, 1)
				assert.Equal(t, notify.SeverityError, notices[0].Severity)
				assert.Equal(t, "Ошибка при обновлении переводов: timeout", notices[0].Message)
			} else {
				assert.Empty(t, notices)
			}
		})
	}
}

func TestController_BackfillCancelledByNextWord(t *testing.T) {
	f := newFixture()
	partial := testutil.NewTestWord(5, "casa", nil)
	full := completeWord(6, "perro")
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(partial), nil).Once()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(full), nil).Once()

	f.ctrl.Next(context.Background())
	f.sched.Advance(time.Second)
	f.ctrl.Next(context.Background())
	f.sched.Advance(5 * time.Second)

	f.backend.AssertNumberOfCalls(t, "NextWord", 2)
	card := f.ctrl.Card()
	assert.Equal(t, "perro", card.Headline)
	assert.Equal(t, "l-perro", card.Translation(domain.ProviderLingva))
}

func TestController_BackfillInFlightDoesNotClobberNewerWord(t *testing.T) {
	f := newFixture()
	partial := testutil.NewTestWord(5, "casa", nil)
	late := completeWord(5, "casa")
	newer := completeWord(6, "perro")

	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(partial), nil).Once()
	// While the back-fill fetch is in flight the learner moves on
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(late), nil).Once().
		Run(func(args mock.Arguments) {
			f.ctrl.Next(context.Background())
		})
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(newer), nil).Once()

	f.ctrl.Next(context.Background())
	f.sched.Advance(DefaultBackfillDelay)

	f.backend.AssertNumberOfCalls(t, "NextWord", 3)
	card := f.ctrl.Card()
	assert.Equal(t, int64(6), card.WordID)
	assert.Equal(t, "g-perro", card.Translation(domain.ProviderGoogle))
	assert.Equal(t, "l-perro", card.Translation(domain.ProviderLingva))

	current, _ := f.ctrl.Current()
	assert.Equal(t, *newer, current)
}

func TestController_NothingDue(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NothingDue("No words due"), nil).Once()

	f.ctrl.Next(context.Background())

	assert.Equal(t, StateEmpty, f.ctrl.State())
	card := f.ctrl.Card()
	assert.Equal(t, "No words due", card.Headline)
	assert.False(t, card.CanReveal)
	assert.False(t, card.CanRate)

	assert.False(t, f.ctrl.Reveal())
	f.ctrl.Answer(context.Background(), 5, 3)

	_, ok := f.ctrl.Current()
	assert.False(t, ok)
	f.backend.AssertNotCalled(t, "ReviewWord", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.all())
}

func TestController_NothingDueWithoutMessage(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NothingDue(""), nil).Once()

	f.ctrl.Next(context.Background())

	assert.Equal(t, MessageNothingDue, f.ctrl.Card().Headline)
}

func TestController_NextFailure(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedMessage string
	}{
		{
			name:            "service error",
			err:             &backend.ServiceError{Status: 500, Detail: "database is locked"},
			expectedMessage: "database is locked",
		},
		{
			name:            "transport error",
			err:             &backend.TransportError{Op: "GET /next_word", Err: errors.New("connection refused")},
			expectedMessage: "Ошибка при получении слова: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.backend.On("NextWord", mock.Anything).Return(nil, tt.err).Once()

			f.ctrl.Next(context.Background())

			assert.Equal(t, StateFailed, f.ctrl.State())
			assert.Equal(t, MessageLoadFailed, f.ctrl.Card().Headline)
			notices := f.notifier.all()
			require.Len(t, notices, 1)
			assert.Equal(t, notify.Notice{Message: tt.expectedMessage, Severity: notify.SeverityError}, notices[0])

			// The session stays usable
			f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(1, "house")), nil).Once()
			f.ctrl.Next(context.Background())
			assert.Equal(t, StateDisplaying, f.ctrl.State())
		})
	}
}

func TestController_RevealOnlyFromDisplaying(t *testing.T) {
	f := newFixture()
	assert.False(t, f.ctrl.Reveal())

	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(1, "house")), nil).Once()
	f.ctrl.Next(context.Background())

	assert.True(t, f.ctrl.Reveal())
	card := f.ctrl.Card()
	assert.Equal(t, StateRevealed, card.State)
	assert.True(t, card.ShowTranslations)
	assert.True(t, card.CanRate)
	assert.False(t, card.CanReveal)

	assert.False(t, f.ctrl.Reveal())
	f.backend.AssertNumberOfCalls(t, "NextWord", 1)
}

func TestController_AnswerAndAdvance(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(5, "casa")), nil).Once()
	f.backend.On("ReviewWord", mock.Anything, int64(5), domain.Quality(3)).Return("Saved", nil).Once()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(6, "perro")), nil).Once()

	f.ctrl.Next(context.Background())
	f.ctrl.Reveal()
	f.ctrl.Answer(context.Background(), 5, 3)

	notices := f.notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.Notice{Message: "Saved", Severity: notify.SeveritySuccess}, notices[0])
	assert.False(t, f.ctrl.Card().CanRate)
	assert.Equal(t, []time.Duration{DefaultAdvanceDelay}, f.sched.Pending())

	f.sched.Advance(999 * time.Millisecond)
	f.backend.AssertNumberOfCalls(t, "NextWord", 1)

	f.sched.Advance(time.Millisecond)
	f.backend.AssertNumberOfCalls(t, "NextWord", 2)
	assert.Equal(t, "perro", f.ctrl.Card().Headline)

	f.sched.Advance(time.Minute)
	f.backend.AssertNumberOfCalls(t, "NextWord", 2)
	f.backend.AssertExpectations(t)
}

func TestController_AnswerTwiceSubmitsOnce(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(5, "casa")), nil).Once()
	f.backend.On("ReviewWord", mock.Anything, int64(5), domain.Quality(4)).Return("Saved", nil).Once()

	f.ctrl.Next(context.Background())
	f.ctrl.Reveal()
	f.ctrl.Answer(context.Background(), 5, 4)
	f.ctrl.Answer(context.Background(), 5, 4)

	f.backend.AssertNumberOfCalls(t, "ReviewWord", 1)
	assert.Len(t, f.sched.Pending(), 1)
}

func TestController_AnswerFailure(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(5, "casa")), nil).Once()
	f.backend.On("ReviewWord", mock.Anything, int64(5), domain.Quality(2)).
		Return("", &backend.ServiceError{Status: 404, Detail: "Word not found"}).Once()
	f.backend.On("ReviewWord", mock.Anything, int64(5), domain.Quality(2)).Return("Saved", nil).Once()

	f.ctrl.Next(context.Background())
	f.ctrl.Reveal()
	f.ctrl.Answer(context.Background(), 5, 2)

	assert.Equal(t, StateRevealed, f.ctrl.State())
	assert.True(t, f.ctrl.Card().CanRate)
	assert.Empty(t, f.sched.Pending())
	notices := f.notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.Notice{Message: "Word not found", Severity: notify.SeverityError}, notices[0])

	// The learner may try again
	f.ctrl.Answer(context.Background(), 5, 2)
	f.backend.AssertNumberOfCalls(t, "ReviewWord", 2)
	assert.Len(t, f.sched.Pending(), 1)
}

func TestController_AnswerForStaleWord(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(6, "perro")), nil).Once()

	f.ctrl.Next(context.Background())
	f.ctrl.Reveal()
	f.ctrl.Answer(context.Background(), 5, 3)

	f.backend.AssertNotCalled(t, "ReviewWord", mock.Anything, mock.Anything, mock.Anything)
	notices := f.notifier.all()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.Notice{Message: MessageStaleAnswer, Severity: notify.SeverityInfo}, notices[0])
}

func TestController_AnswerBeforeReveal(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(5, "casa")), nil).Once()

	f.ctrl.Next(context.Background())
	f.ctrl.Answer(context.Background(), 5, 3)

	f.backend.AssertNotCalled(t, "ReviewWord", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, StateDisplaying, f.ctrl.State())
}

func TestController_AnswerInvalidQuality(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(5, "casa")), nil).Once()

	f.ctrl.Next(context.Background())
	f.ctrl.Reveal()
	f.ctrl.Answer(context.Background(), 5, 9)

	f.backend.AssertNotCalled(t, "ReviewWord", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, StateRevealed, f.ctrl.State())
}

func TestController_AnswerTargetsWordDuringBackfill(t *testing.T) {
	f := newFixture()
	partial := testutil.NewTestWord(5, "casa", nil)
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(partial), nil).Once()
	// The rating is submitted while the back-fill fetch is still running
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(5, "casa")), nil).Once().
		Run(func(args mock.Arguments) {
			f.ctrl.Reveal()
			f.ctrl.Answer(context.Background(), 5, 5)
		})
	f.backend.On("ReviewWord", mock.Anything, int64(5), domain.Quality(5)).Return("Saved", nil).Once()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NothingDue("No words due"), nil).Once()

	f.ctrl.Next(context.Background())
	f.sched.Advance(DefaultBackfillDelay)

	assert.Equal(t, "g-casa", f.ctrl.Card().Translation(domain.ProviderGoogle))

	f.sched.Advance(DefaultAdvanceDelay)
	f.backend.AssertExpectations(t)
	assert.Equal(t, StateEmpty, f.ctrl.State())
}

func TestController_ManualNextCancelsAdvance(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(5, "casa")), nil).Once()
	f.backend.On("ReviewWord", mock.Anything, int64(5), domain.Quality(3)).Return("Saved", nil).Once()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(completeWord(6, "perro")), nil).Once()

	f.ctrl.Next(context.Background())
	f.ctrl.Reveal()
	f.ctrl.Answer(context.Background(), 5, 3)
	f.ctrl.Next(context.Background())
	f.sched.Advance(time.Minute)

	f.backend.AssertNumberOfCalls(t, "NextWord", 2)
	assert.Equal(t, "perro", f.ctrl.Card().Headline)
}

func TestController_Close(t *testing.T) {
	f := newFixture()
	f.backend.On("NextWord", mock.Anything).Return(testutil.NextWordResult(testutil.NewTestWord(5, "casa", nil)), nil).Once()

	f.ctrl.Next(context.Background())
	f.ctrl.Close()
	f.sched.Advance(time.Minute)
	f.ctrl.Next(context.Background())

	f.backend.AssertNumberOfCalls(t, "NextWord", 1)
	assert.Empty(t, f.sched.Pending())
}

type detachingView struct {
	recordingView
	detached int
}

func (v *detachingView) Detach() {
	v.detached++
}

func TestController_DetachAndNotify(t *testing.T) {
	view := &detachingView{}
	notifier := &recordingNotifier{}
	ctrl := NewController(
		context.Background(),
		new(testutil.MockBackend),
		view,
		notifier,
		testutil.NewFakeScheduler(),
		Config{},
		testutil.NewTestLogger(),
	)

	ctrl.Detach()
	ctrl.Notify("Нет слов в базе данных", notify.SeverityInfo)

	assert.Equal(t, 1, view.detached)
	assert.Equal(t, []notify.Notice{{Message: "Нет слов в базе данных", Severity: notify.SeverityInfo}}, notifier.all())
}
