// Package session drives one city: it owns the authoritative state, the
// event source and the tax rate, and reports what happens to a Sink.
package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/samlin1112/CitySim/pkg/analytics"
	"github.com/samlin1112/CitySim/pkg/config"
	"github.com/samlin1112/CitySim/pkg/cost"
	"github.com/samlin1112/CitySim/pkg/events"
	"github.com/samlin1112/CitySim/pkg/grid"
	"github.com/samlin1112/CitySim/pkg/persist"
	"github.com/samlin1112/CitySim/pkg/sim"
	"github.com/samlin1112/CitySim/pkg/validation"
)

// ErrEventsDisabled is returned when forcing an event on a session without
// an event system.
var ErrEventsDisabled = errors.New("events are disabled")

// Session is not safe for concurrent use. Concurrent drivers must hold
// their own lock around every call.
type Session struct {
	id      uuid.UUID
	city    *sim.City
	events  *events.System
	taxRate float64
	sink    Sink
	logger  *slog.Logger
}

// Option customises a Session.
type Option func(*Session)

// WithEvents replaces the event system built from config. Passing nil
// disables events.
func WithEvents(sys *events.System) Option {
	return func(s *Session) { s.events = sys }
}

// WithID fixes the session id, so that sinks built before the session can
// refer to it.
func WithID(id uuid.UUID) Option {
	return func(s *Session) { s.id = id }
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New starts a session with a fresh city sized by cfg. A nil sink discards
// messages.
func New(cfg *config.Config, sink Sink, opts ...Option) (*Session, error) {
	if err := validation.ValidateConfig(cfg).Err(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	city, err := sim.New(cfg.City.Width, cfg.City.Height)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = Discard
	}
	s := &Session{
		id:      uuid.New(),
		city:    city,
		taxRate: cfg.Economy.TaxRate,
		sink:    sink,
		logger:  slog.Default(),
	}
	if cfg.Events.Enabled {
		s.events = events.NewSeeded(cfg.Events.Seed, cfg.Events.Chance)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session", s.id.String())
	return s, nil
}

// ID identifies the session in logs and the save journal.
func (s *Session) ID() uuid.UUID { return s.id }

// City returns the live city. Callers must not keep it across commands
// that may replace it (NewCity, Clear, Load).
func (s *Session) City() *sim.City { return s.city }

// TaxRate returns the rate Step ticks with.
func (s *Session) TaxRate() float64 { return s.taxRate }

// SetTaxRate changes the rate Step ticks with.
func (s *Session) SetTaxRate(rate float64) error {
	if !(rate >= 0 && rate <= 1) {
		return fmt.Errorf("tax rate %v outside [0, 1]", rate)
	}
	s.taxRate = rate
	return nil
}

// EventsEnabled reports whether Step may trigger random events.
func (s *Session) EventsEnabled() bool { return s.events != nil }

func (s *Session) emit(msg string) {
	s.sink.Log(msg)
}

// NewCity discards the current city and starts a fresh one.
func (s *Session) NewCity(width, height int) error {
	city, err := sim.New(width, height)
	if err != nil {
		return err
	}
	s.city = city
	s.logger.Info("new city", "width", width, "height", height)
	s.emit(fmt.Sprintf("New %dx%d city founded.", width, height))
	return nil
}

// Clear resets the map to a fresh city of the same size.
func (s *Session) Clear() {
	city, _ := sim.New(s.city.Width, s.city.Height)
	s.city = city
	s.logger.Info("map cleared")
	s.emit("Map cleared.")
}

// Tick advances the city one unit step at taxRate.
func (s *Session) Tick(taxRate float64) sim.TickReport {
	r := s.city.Tick(1, taxRate)
	for _, msg := range r.Messages {
		s.emit(msg)
	}
	s.logger.Debug("tick", "tick", s.city.TickCount, "population", s.city.Population, "money", s.city.Money)
	return r
}

// StepResult is one timer beat: a tick plus the event it may have set off.
type StepResult struct {
	Tick  sim.TickReport  `json:"tick"`
	Event *events.Outcome `json:"event,omitempty"`
}

// Step ticks at the session tax rate and then rolls for a random event,
// as the real-time loop does every interval.
func (s *Session) Step() StepResult {
	res := StepResult{Tick: s.Tick(s.taxRate)}
	if out, ok := s.MaybeTriggerEvent(); ok {
		res.Event = &out
	}
	return res
}

// Build places a tile and reports the cost.
func (s *Session) Build(x, y int, c grid.Category) (cost.Price, error) {
	price, err := s.city.Build(x, y, c)
	if err != nil {
		return price, err
	}
	s.emit(fmt.Sprintf("Built %s at (%d,%d) for %d money, %d materials.", c, x, y, price.Money, price.Materials))
	return price, nil
}

// QuoteUpgrade prices an upgrade without performing it.
func (s *Session) QuoteUpgrade(x, y int) (cost.Price, error) {
	return s.city.QuoteUpgrade(x, y)
}

// Upgrade raises a tile one level and reports the cost.
func (s *Session) Upgrade(x, y int) (cost.Price, error) {
	price, err := s.city.Upgrade(x, y)
	if err != nil {
		return price, err
	}
	t, _ := s.city.Tile(x, y)
	s.emit(fmt.Sprintf("Upgraded (%d,%d) to %s Lv%d for %d money, %d materials.", x, y, t.Category, t.Level, price.Money, price.Materials))
	return price, nil
}

// MaybeTriggerEvent rolls for a random event. It never fires when events
// are disabled.
func (s *Session) MaybeTriggerEvent() (events.Outcome, bool) {
	if s.events == nil {
		return events.Outcome{}, false
	}
	out, ok := s.events.MaybeTrigger(s.city)
	if ok {
		s.logger.Info("event", "kind", out.Kind, "money_delta", out.MoneyDelta, "destroyed", out.Destroyed)
		s.emit(out.Message)
	}
	return out, ok
}

// TriggerEvent forces one random event, regardless of chance.
func (s *Session) TriggerEvent() (events.Outcome, error) {
	if s.events == nil {
		return events.Outcome{}, ErrEventsDisabled
	}
	out := s.events.Trigger(s.city)
	s.logger.Info("event", "kind", out.Kind, "money_delta", out.MoneyDelta, "destroyed", out.Destroyed)
	s.emit(out.Message)
	return out, nil
}

// Save writes the city to w.
func (s *Session) Save(w io.Writer, f persist.Format) error {
	if err := persist.Encode(w, s.city, f); err != nil {
		return fmt.Errorf("saving city: %w", err)
	}
	s.emit(fmt.Sprintf("Saved at tick %d.", s.city.TickCount))
	return nil
}

// Load replaces the city with one read from r. On error the current city
// is kept.
func (s *Session) Load(r io.Reader, f persist.Format) error {
	city, err := persist.Decode(r, f)
	if err != nil {
		return fmt.Errorf("loading city: %w", err)
	}
	s.Restore(city)
	return nil
}

// Restore installs an already decoded city.
func (s *Session) Restore(city *sim.City) {
	s.city = city
	s.logger.Info("city loaded", "width", city.Width, "height", city.Height, "tick", city.TickCount)
	s.emit(fmt.Sprintf("Loaded %dx%d city at tick %d.", city.Width, city.Height, city.TickCount))
}

// Report is an overview of the city's economy and its problems.
type Report struct {
	City       *sim.City            `json:"city"`
	Production analytics.Production `json:"production"`
	Balance    analytics.Balance    `json:"balance"`
	Valuation  *cost.Report         `json:"valuation"`
	Diagnosis  *validation.Report   `json:"diagnosis"`
}

// Report surveys the current city without changing it.
func (s *Session) Report() Report {
	return BuildReport(s.city)
}

// BuildReport surveys any city.
func BuildReport(c *sim.City) Report {
	p := analytics.Survey(c.Grid)
	b := analytics.Assess(p, c.Population, c.Jobs)
	return Report{
		City:       c.Clone(),
		Production: p,
		Balance:    b,
		Valuation:  cost.Valuation(c.Grid),
		Diagnosis:  analytics.Diagnose(p, b, c.Pollution),
	}
}
