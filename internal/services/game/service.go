package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastprodman/TimeMint/internal/clock"
	core "github.com/fastprodman/TimeMint/internal/game"
	"github.com/fastprodman/TimeMint/internal/repos/saves"
)

// Rhythm supplies the beat multiplier. rhythm.Detector implements it.
type Rhythm interface {
	Observe(bins []uint8, at time.Time, mode core.TimeMode) bool
	Multiplier(mode core.TimeMode) float64
	Settle(mode core.TimeMode)
	Reset()
}

// EventSink receives every stamped event. Publish must not block.
type EventSink interface {
	Publish(ev core.Event)
}

type Options struct {
	Key             string
	OfflineEarnings bool
	OfflineMax      time.Duration
}

// GameService is the single owner of the player's State. Every read and
// write goes through mu, so a tick never observes a half-applied action.
type GameService struct {
	engine core.Engine
	store  saves.Saves
	rhythm Rhythm
	sink   EventSink
	clk    clock.Clock
	opts   Options

	mu           sync.Mutex
	st           core.State
	mode         core.TimeMode
	milestones   core.Milestones
	lastTick     time.Time
	sessionStart time.Time
	offline      float64
}

func New(engine core.Engine, store saves.Saves, rhythm Rhythm, sink EventSink, clk clock.Clock, opts Options) *GameService {
	if rhythm == nil {
		rhythm = flatRhythm{}
	}

	if sink == nil {
		sink = discardSink{}
	}

	now := clk.Now()

	return &GameService{
		engine:       engine,
		store:        store,
		rhythm:       rhythm,
		sink:         sink,
		clk:          clk,
		opts:         opts,
		st:           core.Fresh(now),
		mode:         core.ModeNormal,
		lastTick:     now,
		sessionStart: now,
	}
}

// Load replaces the in-memory state with the stored snapshot. A missing or
// unreadable snapshot starts a fresh game; only storage failures are errors.
func (s *GameService) Load(ctx context.Context) error {
	data, err := s.store.Load(ctx, s.opts.Key)

	now := s.clk.Now()
	st := core.Fresh(now)
	restored := false

	switch {
	case errors.Is(err, saves.ErrSaveNotFound):
		slog.Info("no save found, starting fresh", "key", s.opts.Key)
	case err != nil:
		return fmt.Errorf("load save: %w", err)
	default:
		decoded, derr := core.Decode(data)
		if derr != nil {
			slog.Warn("discarding unreadable save", "key", s.opts.Key, "error", derr)
			break
		}

		st = decoded
		restored = true
	}

	var (
		ms       core.Milestones
		events   []core.Event
		credited float64
	)

	if restored && s.opts.OfflineEarnings {
		events, credited = s.creditOffline(&st, &ms, now)
	}

	st.Touch(now)

	s.mu.Lock()
	s.st = st
	s.mode = core.ModeNormal
	s.milestones = ms
	s.lastTick = now
	s.sessionStart = now
	s.offline = credited
	s.mu.Unlock()

	slog.Info("game loaded",
		"restored", restored,
		"balance", st.Balance,
		"prestige_points", st.PrestigePoints,
		"offline_earnings", credited,
	)

	s.publish(events)

	return nil
}

// creditOffline advances st by the time since its last update, capped at
// OfflineMax, in normal mode without rhythm.
func (s *GameService) creditOffline(st *core.State, ms *core.Milestones, now time.Time) ([]core.Event, float64) {
	away := now.Sub(st.LastUpdateTime())
	if away <= 0 {
		return nil, 0
	}

	if s.opts.OfflineMax > 0 && away > s.opts.OfflineMax {
		away = s.opts.OfflineMax
	}

	before := st.Balance
	events := s.engine.Advance(st, ms, away.Seconds(), core.ModeNormal, 1)
	credited := st.Balance - before

	if credited > 0 {
		events = append([]core.Event{{Type: core.EventOfflineEarnings, Amount: credited}}, events...)
	}

	return events, credited
}

// Tick advances the simulation by the real time since the previous tick.
func (s *GameService) Tick() []core.Event {
	s.mu.Lock()
	events := s.settleLocked()
	s.mu.Unlock()

	return s.publish(events)
}

// settleLocked credits the time since the last tick under the current mode.
func (s *GameService) settleLocked() []core.Event {
	now := s.clk.Now()

	dt := now.Sub(s.lastTick).Seconds()
	if dt < 0 {
		dt = 0
	}

	s.lastTick = now

	events := s.engine.Advance(&s.st, &s.milestones, dt, s.mode, s.rhythm.Multiplier(s.mode))
	s.st.Touch(now)

	return events
}

func (s *GameService) Mode() core.TimeMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode
}

// SetMode switches the time mode. Time up to now is settled under the old mode.
func (s *GameService) SetMode(m core.TimeMode) error {
	m, err := core.ParseTimeMode(string(m))
	if err != nil {
		return err
	}

	s.mu.Lock()
	events := s.settleLocked()
	prev := s.mode
	if prev != m {
		s.rhythm.Settle(prev)
	}
	s.mode = m
	s.mu.Unlock()

	if prev != m {
		events = append(events, core.Event{Type: core.EventModeChanged, Mode: m})
	}

	s.publish(events)

	return nil
}

func (s *GameService) BuyUpgrade(id string) (core.Purchase, error) {
	return s.buy(id, s.engine.PurchaseUpgrade)
}

func (s *GameService) BuyBusiness(id string) (core.Purchase, error) {
	return s.buy(id, s.engine.PurchaseBusiness)
}

func (s *GameService) buy(id string, purchase func(*core.State, string) (core.Purchase, error)) (core.Purchase, error) {
	s.mu.Lock()
	events := s.settleLocked()

	p, err := purchase(&s.st, id)
	if err == nil {
		events = append(events, core.Event{Type: core.EventPurchase, ItemID: p.ItemID, Amount: p.Cost})
		events = append(events, s.unlockLocked()...)
	}
	s.mu.Unlock()

	s.publish(events)

	if err != nil {
		slog.Debug("purchase refused", "item", id, "error", err)
		return core.Purchase{}, err
	}

	return p, nil
}

// Tap adds a manual burst. Only available in freeze mode.
func (s *GameService) Tap() (float64, error) {
	s.mu.Lock()
	events := s.settleLocked()

	burst, err := s.engine.ManualTap(&s.st, s.mode)
	if err == nil {
		events = append(events, core.Event{Type: core.EventManualTap, Amount: burst})
		events = append(events, s.unlockLocked()...)
	}
	s.mu.Unlock()

	s.publish(events)

	if err != nil {
		slog.Debug("tap refused", "error", err)
		return 0, err
	}

	return burst, nil
}

// Prestige resets progress for permanent points and saves right away.
// A failed save is logged; the prestige itself stands.
func (s *GameService) Prestige(ctx context.Context) (core.PrestigeResult, error) {
	s.mu.Lock()
	events := s.settleLocked()

	res, err := s.engine.Prestige(&s.st, &s.milestones)
	if err == nil {
		events = append(events, core.Event{Type: core.EventPrestige, Points: res.AwardedPoints, Amount: res.TotalEarned})
		events = append(events, s.unlockLocked()...)
	}
	s.mu.Unlock()

	s.publish(events)

	if err != nil {
		slog.Debug("prestige refused", "error", err)
		return core.PrestigeResult{}, err
	}

	serr := s.Save(ctx)
	if serr != nil {
		slog.Error("save after prestige failed", "error", serr)
	}

	return res, nil
}

// ObserveSpectrum feeds one frame to the beat detector and returns whether
// it was a beat and the resulting rhythm multiplier.
func (s *GameService) ObserveSpectrum(bins []uint8) (bool, float64) {
	mode := s.Mode()
	now := s.clk.Now()

	beat := s.rhythm.Observe(bins, now, mode)
	mult := s.rhythm.Multiplier(mode)

	if beat {
		s.publish([]core.Event{{Type: core.EventBeat, Amount: mult, Mode: mode}})
	}

	return beat, mult
}

// ResetRhythm drops the accumulated beat level. Income earned so far under
// the old level is settled first.
func (s *GameService) ResetRhythm() {
	s.mu.Lock()
	events := s.settleLocked()
	s.rhythm.Reset()
	s.mu.Unlock()

	s.publish(events)

	slog.Debug("rhythm reset")
}

// State returns a deep copy of the current state.
func (s *GameService) State() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.st.Clone()
}

// Save writes the current state to the store.
func (s *GameService) Save(ctx context.Context) error {
	s.mu.Lock()
	data, err := core.Encode(s.st)
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	err = s.store.Store(ctx, s.opts.Key, data)
	if err != nil {
		return fmt.Errorf("store state: %w", err)
	}

	slog.Debug("game saved", "key", s.opts.Key, "bytes", len(data))

	return nil
}

func (s *GameService) unlockLocked() []core.Event {
	var events []core.Event
	for _, id := range s.engine.UnlockAchievements(&s.st) {
		events = append(events, core.Event{Type: core.EventAchievementUnlocked, AchievementID: id})
	}

	return events
}

// publish stamps, logs and forwards events. Must be called without mu held.
func (s *GameService) publish(events []core.Event) []core.Event {
	if len(events) == 0 {
		return nil
	}

	now := s.clk.Now()

	for i := range events {
		events[i].ID = uuid.NewString()
		events[i].At = now

		ev := events[i]
		level := slog.LevelInfo
		if ev.Type == core.EventBeat {
			level = slog.LevelDebug
		}

		slog.Log(context.Background(), level, "game event",
			"id", ev.ID,
			"type", ev.Type,
			"threshold", ev.Threshold,
			"achievement", ev.AchievementID,
			"item", ev.ItemID,
			"amount", ev.Amount,
		)

		s.sink.Publish(ev)
	}

	return events
}

type flatRhythm struct{}

func (flatRhythm) Observe([]uint8, time.Time, core.TimeMode) bool { return false }
func (flatRhythm) Multiplier(core.TimeMode) float64 { return 1 }
func (flatRhythm) Settle(core.TimeMode) {}
func (flatRhythm) Reset() {}

type discardSink struct{}

func (discardSink) Publish(core.Event) {}
