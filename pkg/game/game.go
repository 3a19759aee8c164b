package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/cbodonnell/simon/pkg/attract"
	"github.com/cbodonnell/simon/pkg/difficulty"
	"github.com/cbodonnell/simon/pkg/game/constants"
	"github.com/cbodonnell/simon/pkg/game/types"
	"github.com/cbodonnell/simon/pkg/hardware"
	"github.com/cbodonnell/simon/pkg/input"
	"github.com/cbodonnell/simon/pkg/log"
	"github.com/cbodonnell/simon/pkg/metrics"
	"github.com/cbodonnell/simon/pkg/presentation"
	"github.com/cbodonnell/simon/pkg/repositories"
	"github.com/cbodonnell/simon/pkg/repositories/models"
	"github.com/cbodonnell/simon/pkg/state"
	"github.com/google/uuid"
)

// Engine runs the game lifecycle on a single worker:
// attract, present, await input, round won or game over, await name, and back to attract.
type Engine struct {
	palette      *types.Palette
	board        hardware.Board
	multiplexer  *input.Multiplexer
	animator     *attract.Animator
	sink         presentation.Sink
	difficulty   *difficulty.Controller
	repository   repositories.Repository
	stateManager state.StateManager
	metrics      *metrics.Metrics
	sleep        input.SleepFunc
	randIntn     func(n int) int

	sessionStartDelay time.Duration
	presentLeadIn     time.Duration
	roundWonDelay     time.Duration
	gameOverBlinks    int
	blinkDuration     time.Duration
	announceInterval  time.Duration
	nameTimeout       time.Duration

	// owned by the worker
	sequence  types.Sequence
	sessionID string

	capture *scoreCapture

	cancelLock sync.Mutex
	cancel     context.CancelFunc
}

// NewEngineOptions contains options for creating a new Engine.
type NewEngineOptions struct {
	Palette    *types.Palette
	Board      hardware.Board
	Repository repositories.Repository
	// Multiplexer defaults to one reading Board with a fresh mailbox
	Multiplexer *input.Multiplexer
	// Animator defaults to one driving Board with the default timings
	Animator *attract.Animator
	// Sink defaults to presentation.NopSink
	Sink presentation.Sink
	// Difficulty defaults to the built-in presets at medium
	Difficulty *difficulty.Controller
	// StateManager defaults to an in-memory one
	StateManager state.StateManager
	// Metrics may be nil
	Metrics *metrics.Metrics
	// Sleep defaults to input.Sleep
	Sleep input.SleepFunc
	// Rand returns a uniform int in [0, n), defaults to math/rand/v2
	Rand func(n int) int
	// AnnounceInterval defaults to constants.NameAnnounceInterval
	AnnounceInterval time.Duration
	// NameTimeout abandons score capture after this long; zero waits forever
	NameTimeout time.Duration
}

func NewEngine(opts NewEngineOptions) *Engine {
	e := &Engine{
		palette:           opts.Palette,
		board:             opts.Board,
		multiplexer:       opts.Multiplexer,
		animator:          opts.Animator,
		sink:              opts.Sink,
		difficulty:        opts.Difficulty,
		repository:        opts.Repository,
		stateManager:      opts.StateManager,
		metrics:           opts.Metrics,
		sleep:             opts.Sleep,
		randIntn:          opts.Rand,
		sessionStartDelay: constants.SessionStartDelay,
		presentLeadIn:     constants.PresentLeadIn,
		roundWonDelay:     constants.RoundWonDelay,
		gameOverBlinks:    constants.GameOverBlinks,
		blinkDuration:     constants.GameOverBlinkDuration,
		announceInterval:  opts.AnnounceInterval,
		nameTimeout:       opts.NameTimeout,
		capture:           newScoreCapture(),
	}
	if e.sleep == nil {
		e.sleep = input.Sleep
	}
	if e.randIntn == nil {
		e.randIntn = rand.IntN
	}
	if e.sink == nil {
		e.sink = presentation.NopSink{}
	}
	if e.multiplexer == nil {
		e.multiplexer = input.NewMultiplexer(input.NewMultiplexerOptions{
			Board:   e.board,
			Palette: e.palette,
			Sleep:   e.sleep,
		})
	}
	if e.animator == nil {
		e.animator = attract.NewAnimator(attract.NewAnimatorOptions{
			Board:       e.board,
			Palette:     e.palette,
			Multiplexer: e.multiplexer,
			Sleep:       e.sleep,
		})
	}
	if e.difficulty == nil {
		// the built-in presets always contain the default level
		e.difficulty, _ = difficulty.NewController(difficulty.NewControllerOptions{})
	}
	if e.stateManager == nil {
		e.stateManager = state.NewInMemoryStateManager(e.palette)
	}
	if e.announceInterval <= 0 {
		e.announceInterval = constants.NameAnnounceInterval
	}
	e.updateState(context.Background(), func(s *types.Snapshot) {
		s.Difficulty = e.difficulty.Level()
	})
	return e
}

// Start runs the game loop until ctx is cancelled or Stop is called.
func (e *Engine) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.cancelLock.Lock()
	e.cancel = cancel
	e.cancelLock.Unlock()

	log.Info("Starting game engine with %d colors", e.palette.Len())
	defer hardware.AllOff(e.board, e.palette)

	for {
		if err := e.runSession(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info("Game engine stopped")
				return nil
			}
			return fmt.Errorf("failed to run session: %v", err)
		}
	}
}

// Stop cancels a running Start.
func (e *Engine) Stop() {
	e.cancelLock.Lock()
	defer e.cancelLock.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// runSession runs one pass from attract mode through score capture.
func (e *Engine) runSession(ctx context.Context) error {
	if err := e.runAttract(ctx); err != nil {
		return err
	}
	if err := e.startSession(ctx); err != nil {
		return err
	}

	for {
		if err := e.present(ctx); err != nil {
			return err
		}
		won, err := e.awaitInput(ctx)
		if err != nil {
			return err
		}
		if !won {
			break
		}
		if err := e.roundWon(ctx); err != nil {
			return err
		}
	}

	score, err := e.gameOver(ctx)
	if err != nil {
		return err
	}
	return e.awaitName(ctx, score)
}

func (e *Engine) runAttract(ctx context.Context) error {
	e.sequence.Reset()
	e.sessionID = ""
	hardware.AllOff(e.board, e.palette)
	e.updateState(ctx, func(s *types.Snapshot) {
		s.Phase = types.PhaseAttract
		s.SessionID = ""
		s.SequenceLength = 0
		s.PendingScore = nil
		for c := range s.Leds {
			s.Leds[c] = types.LedOff
		}
	})
	e.status(constants.StatusPressToStart)

	return e.animator.RunUntilStart(ctx)
}

func (e *Engine) startSession(ctx context.Context) error {
	e.sequence.Reset()
	e.sessionID = uuid.New().String()
	e.metrics.GameStarted()
	log.Info("Starting session %s at %s difficulty", e.sessionID, e.difficulty.Level())

	e.updateState(ctx, func(s *types.Snapshot) {
		s.Phase = types.PhasePresent
		s.SessionID = e.sessionID
		s.SequenceLength = 0
	})
	e.status(constants.StatusStarting)

	return e.sleep(ctx, e.sessionStartDelay)
}

// present grows the sequence by one random color and plays it back.
func (e *Engine) present(ctx context.Context) error {
	next := e.palette.At(e.randIntn(e.palette.Len()))
	e.sequence.Append(next)
	log.Debug("Session %s round %d adds %s", e.sessionID, e.sequence.Len(), next)

	e.updateState(ctx, func(s *types.Snapshot) {
		s.Phase = types.PhasePresent
		s.SequenceLength = e.sequence.Len()
	})
	e.status(constants.StatusPresenting)
	if err := e.sleep(ctx, e.presentLeadIn); err != nil {
		return err
	}

	for _, c := range e.sequence.Colors() {
		if err := e.flash(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// awaitInput reads one choice per expected color. It reports false on the
// first mismatch without reading the rest.
func (e *Engine) awaitInput(ctx context.Context) (bool, error) {
	e.updateState(ctx, func(s *types.Snapshot) {
		s.Phase = types.PhaseAwaitInput
	})
	e.status(constants.StatusYourTurn)

	for i, expected := range e.sequence.Colors() {
		choice, err := e.multiplexer.AwaitChoice(ctx)
		if err != nil {
			return false, err
		}
		if choice != expected {
			log.Debug("Session %s step %d: expected %s, got %s", e.sessionID, i+1, expected, choice)
			return false, nil
		}
		if err := e.flash(ctx, choice); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (e *Engine) roundWon(ctx context.Context) error {
	e.metrics.RoundCompleted()
	e.updateState(ctx, func(s *types.Snapshot) {
		s.Phase = types.PhaseRoundWon
	})
	return e.sleep(ctx, e.roundWonDelay)
}

// gameOver plays the terminal animation and returns the score.
func (e *Engine) gameOver(ctx context.Context) (int, error) {
	score := e.sequence.Len()
	level := e.difficulty.Level()
	log.Info("Session %s over with score %d at %s difficulty", e.sessionID, score, level)
	e.metrics.GameOver(level, score)

	e.updateState(ctx, func(s *types.Snapshot) {
		s.Phase = types.PhaseGameOver
	})
	e.sink.Emit(types.EventGameOver, types.GameOverPayload{Score: score})

	for i := 0; i < e.gameOverBlinks; i++ {
		e.setAll(ctx, true)
		if err := e.sleep(ctx, e.blinkDuration); err != nil {
			return 0, err
		}
		e.setAll(ctx, false)
		if err := e.sleep(ctx, e.blinkDuration); err != nil {
			return 0, err
		}
	}
	return score, nil
}

// awaitName re-announces the pending score until a name arrives, then
// persists it. Persistence failures are logged and never block the return to attract mode.
func (e *Engine) awaitName(ctx context.Context, score int) error {
	e.capture.open(score)
	defer e.capture.close()

	e.updateState(ctx, func(s *types.Snapshot) {
		s.Phase = types.PhaseAwaitName
		pending := score
		s.PendingScore = &pending
	})
	e.status(constants.StatusEnterName)

	var waited time.Duration
	for {
		e.sink.Emit(types.EventRequestName, types.RequestNamePayload{Score: score})

		timer := time.NewTimer(e.announceInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case name := <-e.capture.names:
			timer.Stop()
			e.saveScore(ctx, name, score)
			return nil
		case <-timer.C:
		}

		waited += e.announceInterval
		if e.nameTimeout > 0 && waited >= e.nameTimeout {
			log.Warn("No name submitted for score %d within %v, discarding it", score, e.nameTimeout)
			return nil
		}
	}
}

func (e *Engine) saveScore(ctx context.Context, name string, score int) {
	if e.repository == nil {
		log.Warn("No repository configured, score %d for %s is not saved", score, name)
		return
	}

	saveCtx, cancel := context.WithTimeout(ctx, constants.ScoreSaveTimeout)
	defer cancel()

	err := e.repository.AddScore(saveCtx, &models.Score{
		Name:       name,
		Score:      score,
		Difficulty: e.difficulty.Level(),
		SessionID:  e.sessionID,
		AchievedAt: time.Now().UTC(),
	})
	e.metrics.ScoreSaved(err)
	if err != nil {
		log.Error("Failed to save score %d for %s: %v", score, name, err)
		return
	}
	log.Info("Saved score %d for %s", score, name)
}

// flash runs one flash cycle. The flash duration is read before the light
// goes on and the pause after it goes off, so a profile change affects the
// next hold rather than the one in progress.
func (e *Engine) flash(ctx context.Context, c types.Color) error {
	hold := e.difficulty.CurrentProfile().FlashDuration
	e.setLED(ctx, c, true)
	e.board.SetBuzzer(true)
	err := e.sleep(ctx, hold)
	e.board.SetBuzzer(false)
	e.setLED(ctx, c, false)
	if err != nil {
		return err
	}
	return e.sleep(ctx, e.difficulty.CurrentProfile().InterStepPause)
}

// setLED emits before switching on and after switching off.
func (e *Engine) setLED(ctx context.Context, c types.Color, on bool) {
	ledState := types.LedStateFromBool(on)
	if on {
		e.sink.Emit(types.EventLedState, types.LedStatePayload{Color: c, State: ledState})
		e.board.SetLED(c, true)
	} else {
		e.board.SetLED(c, false)
		e.sink.Emit(types.EventLedState, types.LedStatePayload{Color: c, State: ledState})
	}
	e.updateState(ctx, func(s *types.Snapshot) {
		s.Leds[c] = ledState
	})
}

func (e *Engine) setAll(ctx context.Context, on bool) {
	for _, c := range e.palette.Colors() {
		e.setLED(ctx, c, on)
	}
	e.board.SetBuzzer(on)
}

func (e *Engine) status(msg string) {
	e.sink.Emit(types.EventGameStatus, types.GameStatusPayload{Msg: msg})
}

func (e *Engine) updateState(ctx context.Context, fn func(s *types.Snapshot)) {
	if err := e.stateManager.Update(ctx, fn); err != nil {
		log.Error("Failed to update game state: %v", err)
	}
}

// SubmitRemoteInput parses a color token and places it in the mailbox,
// returning the parsed color. Unknown tokens are logged and dropped.
func (e *Engine) SubmitRemoteInput(raw string) (types.Color, bool) {
	c, err := e.palette.Parse(raw)
	if err != nil {
		log.Warn("Rejected remote input: %v", err)
		e.metrics.RemoteInput(false)
		return "", false
	}
	e.multiplexer.Mailbox().Put(c)
	e.metrics.RemoteInput(true)
	return c, true
}

// SubmitNameForScore delivers a player name for the pending score. Only the
// first valid submission per game is accepted.
func (e *Engine) SubmitNameForScore(name string) bool {
	name, err := types.NormalizePlayerName(name)
	if err != nil {
		log.Warn("Rejected name submission: %v", err)
		return false
	}
	if !e.capture.submit(name) {
		log.Debug("Ignored name submission %q, no score is waiting for a name", name)
		return false
	}
	return true
}

// SetDifficulty applies a named preset and returns the normalized level
// name. Unknown levels are logged and ignored.
func (e *Engine) SetDifficulty(level string) (string, bool) {
	name, err := e.difficulty.Apply(level)
	if err != nil {
		log.Warn("Rejected difficulty change: %v", err)
		return "", false
	}
	log.Info("Difficulty set to %s", name)
	e.updateState(context.Background(), func(s *types.Snapshot) {
		s.Difficulty = name
	})
	e.sink.Emit(types.EventDifficultyChanged, types.DifficultyChangedPayload{Level: name})
	return name, true
}

// Snapshot returns a copy of the externally visible state.
func (e *Engine) Snapshot(ctx context.Context) (*types.Snapshot, error) {
	return e.stateManager.Get(ctx)
}

// PendingScore returns the score waiting for a name, if any.
func (e *Engine) PendingScore() (int, bool) {
	return e.capture.pending()
}

// Palette returns the configured colors.
func (e *Engine) Palette() *types.Palette {
	return e.palette
}

// DifficultyLevels returns the names accepted by SetDifficulty.
func (e *Engine) DifficultyLevels() []string {
	return e.difficulty.Levels()
}
