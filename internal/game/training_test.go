package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSource struct{}

func (failingSource) Fetch(context.Context) ([]byte, error) { return nil, errors.New("offline") }
func (failingSource) String() string                        { return "failing" }

type brokenStore struct{}

func (brokenStore) Load(context.Context) (stats.Stats, error) {
	return stats.Stats{}, errors.New("corrupt")
}
func (brokenStore) Save(context.Context, stats.Stats) error { return errors.New("read-only") }

func startTraining(t *testing.T, f fixture) {
	t.Helper()
	require.NoError(t, f.svc.SetMode(context.Background(), ModeTraining))
	require.True(t, f.svc.Training().Active)
	require.NotNil(t, f.svc.Training().Scenario)
}

func wrongAction(correct strategy.Action) strategy.Action {
	if correct == strategy.Stand {
		return strategy.Hit
	}
	return strategy.Stand
}

func TestStartTrainingShowsScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	startTraining(t, f)

	tr := f.svc.Training()
	s := f.svc.Snapshot()
	assert.Equal(t, ModeTraining, s.Mode)
	require.Len(t, s.Player, 1)
	assert.Equal(t, tr.Scenario.PlayerCards, s.Player[0].Cards)
	require.Len(t, s.Dealer.Cards, 1)
	assert.Equal(t, tr.Scenario.DealerUpCard, s.Dealer.Cards[0])
	assert.Nil(t, tr.LastAnswer)

	assert.True(t, errors.Is(f.svc.PlaceBet(10), ErrWrongMode))
}

func TestTrainingRequiresTable(t *testing.T) {
	t.Parallel()
	f := newFixture(t, failingSource{})

	err := f.svc.SetMode(context.Background(), ModeTraining)
	assert.True(t, errors.Is(err, strategy.ErrLoad))
	assert.Equal(t, ModePlay, f.svc.Snapshot().Mode)
	assert.False(t, f.svc.Training().Active)
}

func TestStreakThenReset(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	startTraining(t, f)
	ctx := context.Background()

	const n = 7
	for i := 0; i < n; i++ {
		sc := f.svc.Training().Scenario
		answer, err := f.svc.SubmitTrainingAnswer(ctx, sc.CorrectAction)
		require.NoError(t, err)
		require.True(t, answer.WasCorrect)
		assert.Equal(t, "✓ Correct!", f.svc.Snapshot().Message)
		require.NoError(t, f.svc.NextTrainingScenario())
	}

	st := f.svc.Training().Stats
	assert.Equal(t, n, st.Streak)
	assert.Equal(t, n, st.BestStreak)

	sc := f.svc.Training().Scenario
	answer, err := f.svc.SubmitTrainingAnswer(ctx, wrongAction(sc.CorrectAction))
	require.NoError(t, err)
	assert.False(t, answer.WasCorrect)
	assert.Equal(t, sc.CorrectAction, answer.CorrectAction)
	assert.Equal(t, "✗ Wrong! Correct answer: "+sc.CorrectAction.Title(), f.svc.Snapshot().Message)

	st = f.svc.Training().Stats
	assert.Equal(t, 0, st.Streak)
	assert.Equal(t, n, st.BestStreak)
	assert.Equal(t, n+1, st.TotalAttempts)
	assert.Equal(t, n, st.CorrectAttempts)
	assert.Equal(t, 88, f.svc.SuccessRate())
	assert.Equal(t, n+1, f.store.Saves(), "stats saved after every answer")

	persisted, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, st, persisted)
}

func TestCategoryCounters(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.svc.UpdateTrainingFilter(strategy.Filter{Pairs: true})
	startTraining(t, f)

	sc := f.svc.Training().Scenario
	require.Equal(t, hand.Pair, sc.HandType)
	_, err := f.svc.SubmitTrainingAnswer(context.Background(), sc.CorrectAction)
	require.NoError(t, err)

	st := f.svc.Training().Stats
	assert.Equal(t, stats.CategoryStats{Total: 1, Correct: 1}, st.ByCategory.Pair)
	assert.Zero(t, st.ByCategory.Hard.Total)
}

func TestAnswerTimestampsUseClock(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	startTraining(t, f)
	f.clock.Advance(90 * time.Second)

	sc := f.svc.Training().Scenario
	answer, err := f.svc.SubmitTrainingAnswer(context.Background(), sc.CorrectAction)
	require.NoError(t, err)
	assert.Equal(t, f.clock.Now(), answer.AnsweredAt)
	assert.Equal(t, f.clock.Now(), f.svc.Training().Stats.UpdatedAt)
}

func TestOneAnswerPerScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	startTraining(t, f)
	ctx := context.Background()

	sc := f.svc.Training().Scenario
	_, err := f.svc.SubmitTrainingAnswer(ctx, sc.CorrectAction)
	require.NoError(t, err)
	_, err = f.svc.SubmitTrainingAnswer(ctx, sc.CorrectAction)
	assert.True(t, errors.Is(err, ErrActionNotAllowed))
	assert.Equal(t, 1, f.svc.Training().Stats.TotalAttempts)

	require.NoError(t, f.svc.NextTrainingScenario())
	assert.False(t, f.svc.Snapshot().ShowMessage)
	assert.Nil(t, f.svc.Training().LastAnswer)
}

func TestAnswerWithoutScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	_, err := f.svc.SubmitTrainingAnswer(context.Background(), strategy.Hit)
	assert.True(t, errors.Is(err, ErrNoScenario))
}

func TestEmptyFilterKeepsScenario(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	startTraining(t, f)
	before := f.svc.Training().Scenario

	for _, ht := range hand.AllTypes {
		f.svc.ToggleFilter(ht)
	}
	assert.Equal(t, strategy.Filter{}, f.svc.Training().Filter)

	err := f.svc.NextTrainingScenario()
	assert.True(t, errors.Is(err, strategy.ErrNoHandTypes))
	assert.Equal(t, before, f.svc.Training().Scenario)
}

func TestStopTrainingAndReturnToPlay(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	startTraining(t, f)

	require.NoError(t, f.svc.SetMode(context.Background(), ModePlay))
	tr := f.svc.Training()
	assert.False(t, tr.Active)
	assert.Nil(t, tr.Scenario)
	assert.Equal(t, PhaseBetting, f.svc.Snapshot().Phase)
	assert.True(t, errors.Is(f.svc.GenerateNextScenario(), ErrWrongMode))
}

func TestResetTrainingStats(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	startTraining(t, f)
	ctx := context.Background()

	sc := f.svc.Training().Scenario
	_, err := f.svc.SubmitTrainingAnswer(ctx, sc.CorrectAction)
	require.NoError(t, err)

	f.svc.ResetTrainingStats(ctx)
	assert.Zero(t, f.svc.Training().Stats.TotalAttempts)
	assert.Equal(t, 2, f.store.Saves())

	persisted, err := f.store.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, persisted.TotalAttempts)
}

func TestStatsLoadedAtStartup(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	saved := stats.Stats{TotalAttempts: 4, CorrectAttempts: 3, Streak: 2, BestStreak: 3}
	require.NoError(t, f.store.Save(ctx, saved))

	svc := New(ctx, f.svc.engine, f.svc.strategy, f.store, WithLogger(quietLogger()))
	assert.Equal(t, saved, svc.Training().Stats)
	assert.Equal(t, 75, svc.SuccessRate())
}

func TestBrokenStoreFallsBackToZero(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()

	svc := New(ctx, f.svc.engine, f.svc.strategy, brokenStore{}, WithLogger(quietLogger()), WithRules(testRules()))
	assert.Equal(t, stats.Stats{}, svc.Training().Stats)

	require.NoError(t, svc.StartTraining(ctx))
	sc := svc.Training().Scenario
	_, err := svc.SubmitTrainingAnswer(ctx, sc.CorrectAction)
	require.NoError(t, err, "save failures are not surfaced")
	assert.Equal(t, 1, svc.Training().Stats.TotalAttempts)
}

func TestTrainingSnapshotIsolated(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	startTraining(t, f)

	tr := f.svc.Training()
	tr.Scenario.PlayerCards[0].FaceUp = false
	tr.Scenario.CorrectAction = "bogus"

	fresh := f.svc.Training()
	assert.True(t, fresh.Scenario.PlayerCards[0].FaceUp)
	assert.NotEqual(t, strategy.Action("bogus"), fresh.Scenario.CorrectAction)
}

func TestEmptyFilterDoesNotLockOutTraining(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	ctx := context.Background()
	startTraining(t, f)

	for _, ht := range hand.AllTypes {
		f.svc.ToggleFilter(ht)
	}
	require.NoError(t, f.svc.SetMode(ctx, ModePlay))

	require.NoError(t, f.svc.SetMode(ctx, ModeTraining))
	tr := f.svc.Training()
	assert.True(t, tr.Active)
	assert.Nil(t, tr.Scenario)
	assert.Equal(t, ModeTraining, f.svc.Snapshot().Mode)

	_, err := f.svc.SubmitTrainingAnswer(ctx, strategy.Hit)
	assert.True(t, errors.Is(err, ErrNoScenario))

	f.svc.ToggleFilter(hand.Soft)
	require.NoError(t, f.svc.NextTrainingScenario())
	sc := f.svc.Training().Scenario
	require.NotNil(t, sc)
	assert.Equal(t, hand.Soft, sc.HandType)
}
