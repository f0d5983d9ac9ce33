// README: Per-form reconciliation between computed and manually entered freight.
package reconciliation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/types"
)

type Calculator interface {
	Calculate(ctx context.Context, clientID types.ID, req pricing.RatingRequest) (pricing.Quote, error)
}

type Submitter interface {
	Submit(ctx context.Context, cmd delivery.SubmitCommand) (delivery.SubmitResult, error)
}

// Session tracks one open delivery form. All state sits behind mu; calculator calls
// run outside it and a result is applied only if no newer computation started, no
// manual value was typed and the session is still open.
type Session struct {
	id        types.ID
	calc      Calculator
	submitter Submitter
	debounce  time.Duration
	logger    *zap.Logger
	onDone    func(types.ID)

	mu           sync.Mutex
	record       delivery.Record
	state        State
	displayed    decimal.Decimal
	lastComputed *decimal.Decimal
	fallback     bool
	warning      error
	seq          uint64
	closed       bool
	timer        *time.Timer
	timerGen     uint64
}

func newSession(id types.ID, record delivery.Record, calc Calculator, submitter Submitter, debounce time.Duration, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		id:        id,
		calc:      calc,
		submitter: submitter,
		debounce:  debounce,
		logger:    logger.With(zap.String("session_id", id.String())),
		record:    record.Clone(),
		state:     StateIdle,
	}
}

// start seeds the displayed value from a stored freight, or schedules the first
// computation after the debounce delay (zero computes before returning).
func (s *Session) start(ctx context.Context) {
	s.mu.Lock()
	s.state = StateAutoComputing
	if s.record.TotalFreight.IsPositive() {
		s.displayed = types.Cents(s.record.TotalFreight)
		s.mu.Unlock()
		return
	}
	if s.debounce > 0 {
		s.scheduleLocked(context.WithoutCancel(ctx))
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	_ = s.recompute(ctx)
}

func (s *Session) ID() types.ID { return s.id }

// ApplyEdit updates the draft. A pricing-relevant change recomputes while the session
// is auto computing; a manual value is never touched. Invalid numeric input rejects the
// whole edit with pricing.ErrInvalidRatingInput and leaves the session as it was.
func (s *Session) ApplyEdit(ctx context.Context, e Edit) (View, error) {
	if err := e.validate(); err != nil {
		return s.View(), err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return View{}, ErrSessionClosed
	}
	changed := e.apply(&s.record)
	recompute := changed && s.state == StateAutoComputing
	if recompute {
		s.stopTimerLocked()
	}
	s.mu.Unlock()

	if recompute {
		// Incomplete drafts surface the error as the session warning.
		_ = s.recompute(ctx)
	}
	return s.View(), nil
}

// EditFreight records a value typed by staff. The session switches to manual override
// even when the text does not parse; in that case displayed keeps its previous value.
func (s *Session) EditFreight(text string) (View, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return View{}, ErrSessionClosed
	}
	s.state = StateManualOverride
	s.seq++
	s.stopTimerLocked()

	v, err := parseFreight(text)
	if err == nil {
		s.displayed = v
	}
	s.mu.Unlock()

	if err != nil {
		return s.View(), err
	}
	s.logger.Info("freight manually overridden", zap.String("value", v.StringFixed(2)))
	return s.View(), nil
}

// Recalculate discards any manual value and forces a computation.
func (s *Session) Recalculate(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return View{}, ErrSessionClosed
	}
	s.state = StateAutoComputing
	s.stopTimerLocked()
	s.mu.Unlock()

	err := s.recompute(ctx)
	return s.View(), err
}

// Submit persists the displayed freight. A draft whose first computation is still
// pending or in flight is priced before saving. A duplicate minute number without
// confirmDuplicate leaves the session open and reports NeedsConfirmation.
func (s *Session) Submit(ctx context.Context, confirmDuplicate bool) (SubmitOutcome, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return SubmitOutcome{}, ErrSessionClosed
	}
	if s.unpricedLocked() {
		s.stopTimerLocked()
		s.mu.Unlock()
		if err := s.recompute(ctx); err != nil {
			return SubmitOutcome{}, err
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return SubmitOutcome{}, ErrSessionClosed
		}
	}
	rec := s.record.Clone()
	rec.TotalFreight = s.displayed
	s.mu.Unlock()

	res, err := s.submitter.Submit(ctx, delivery.SubmitCommand{Record: rec, ConfirmDuplicate: confirmDuplicate})
	if err != nil {
		return SubmitOutcome{}, err
	}
	if res.NeedsConfirmation {
		return SubmitOutcome{NeedsConfirmation: true}, nil
	}
	if res.Record != nil {
		s.mu.Lock()
		s.record = res.Record.Clone()
		s.mu.Unlock()
	}
	s.finish()
	return SubmitOutcome{Record: res.Record}, nil
}

// Close discards the session. Computations still in flight are dropped on arrival.
func (s *Session) Close() {
	s.finish()
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{
		ID:        s.id,
		State:     s.state,
		Displayed: s.displayed,
		Fallback:  s.fallback,
		Pending:   s.timer != nil,
		Record:    s.record.Clone(),
	}
	if s.lastComputed != nil {
		lc := *s.lastComputed
		v.LastComputed = &lc
	}
	if s.warning != nil {
		v.Warning = s.warning.Error()
	}
	return v
}

func (s *Session) recompute(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.seq++
	seq := s.seq
	clientID := s.record.ClientID
	req := s.record.RatingRequest()
	s.mu.Unlock()

	quote, err := s.calc.Calculate(ctx, clientID, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.seq || s.state != StateAutoComputing {
		s.logger.Debug("stale freight computation discarded", zap.Uint64("seq", seq))
		return nil
	}
	if err != nil {
		s.warning = err
		return err
	}
	amount := quote.Amount
	s.lastComputed = &amount
	s.displayed = amount
	s.fallback = quote.Fallback
	s.warning = quote.Warning
	return nil
}

// unpricedLocked reports an auto computing session that has neither a computed
// value nor a seeded stored freight.
func (s *Session) unpricedLocked() bool {
	if s.state != StateAutoComputing {
		return false
	}
	return s.timer != nil || (s.lastComputed == nil && s.displayed.IsZero())
}

func (s *Session) scheduleLocked(ctx context.Context) {
	s.stopTimerLocked()
	gen := s.timerGen
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		if s.closed || gen != s.timerGen || s.state != StateAutoComputing {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()
		_ = s.recompute(ctx)
	})
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}

func (s *Session) finish() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.state = StateIdle
	s.seq++
	s.stopTimerLocked()
	onDone := s.onDone
	s.mu.Unlock()

	if onDone != nil {
		onDone(s.id)
	}
}

// parseFreight accepts "123.45" and the comma decimal form "123,45".
func parseFreight(text string) (decimal.Decimal, error) {
	t := strings.TrimSpace(text)
	if strings.Count(t, ",") == 1 && !strings.Contains(t, ".") {
		t = strings.Replace(t, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || !validAmount(f) {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrInvalidFreightValue, text)
	}
	return types.Cents(decimal.NewFromFloat(f)), nil
}
