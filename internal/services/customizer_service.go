package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCustomizerSessionTTL bounds how long an idle customizer session is kept.
const DefaultCustomizerSessionTTL = 2 * time.Hour

var (
	// ErrCustomizerSessionNotFound indicates the session id is unknown or expired.
	ErrCustomizerSessionNotFound = errors.New("customizer: session not found")
	// ErrCustomizerInvalidInput indicates an unknown selection field or empty value.
	ErrCustomizerInvalidInput = errors.New("customizer: invalid input")
)

// CustomizerServiceDeps bundles collaborators required to construct the customizer service.
type CustomizerServiceDeps struct {
	Configurator *Configurator
	Cart         CartService
	SessionTTL   time.Duration
	Clock        func() time.Time
	IDGenerator  func() string
	Logger       func(ctx context.Context, event string, fields map[string]any)
}

type customizerSession struct {
	id        string
	cfg       Configuration
	step      Step
	createdAt time.Time
	updatedAt time.Time
}

type customizerService struct {
	configurator *Configurator
	cart         CartService
	ttl          time.Duration
	clock        func() time.Time
	newID        func() string
	logger       func(context.Context, string, map[string]any)

	mu       sync.Mutex
	sessions map[string]*customizerSession
}

// NewCustomizerService keeps sessions in memory only.
func NewCustomizerService(deps CustomizerServiceDeps) (CustomizerService, error) {
	if deps.Configurator == nil {
		return nil, errors.New("customizer service: configurator is required")
	}
	if deps.Cart == nil {
		return nil, errors.New("customizer service: cart service is required")
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = DefaultCustomizerSessionTTL
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return uuid.NewString() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &customizerService{
		configurator: deps.Configurator,
		cart:         deps.Cart,
		ttl:          ttl,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID:    idGen,
		logger:   logger,
		sessions: make(map[string]*customizerSession),
	}, nil
}

func (s *customizerService) Start(ctx context.Context) (CustomizerSession, error) {
	if err := ctx.Err(); err != nil {
		return CustomizerSession{}, err
	}
	now := s.clock()
	session := &customizerSession{
		id:        s.newID(),
		cfg:       Configuration{},
		step:      StepBase,
		createdAt: now,
		updatedAt: now,
	}

	s.mu.Lock()
	s.sessions[session.id] = session
	snapshot := s.snapshot(session)
	s.mu.Unlock()

	s.logger(ctx, "customizer.session.started", map[string]any{"sessionID": session.id})
	return snapshot, nil
}

func (s *customizerService) Get(ctx context.Context, sessionID string) (CustomizerSession, error) {
	if err := ctx.Err(); err != nil {
		return CustomizerSession{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.lookup(sessionID)
	if err != nil {
		return CustomizerSession{}, err
	}
	return s.snapshot(session), nil
}

func (s *customizerService) Select(ctx context.Context, cmd CustomizerSelectCommand) (CustomizerSession, error) {
	if err := ctx.Err(); err != nil {
		return CustomizerSession{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(cmd.SessionID)
	if err != nil {
		return CustomizerSession{}, err
	}
	next, err := s.apply(session.cfg, cmd)
	if err != nil {
		return CustomizerSession{}, err
	}
	session.cfg = next
	session.updatedAt = s.clock()
	return s.snapshot(session), nil
}

func (s *customizerService) apply(cfg Configuration, cmd CustomizerSelectCommand) (Configuration, error) {
	value := strings.TrimSpace(cmd.Value)
	if cmd.Field != SelectMessage && value == "" {
		return cfg, fmt.Errorf("%w: %s value is required", ErrCustomizerInvalidInput, cmd.Field)
	}
	switch cmd.Field {
	case SelectBase:
		return s.configurator.SelectBase(cfg, value)
	case SelectShape:
		return s.configurator.SelectShape(cfg, value)
	case SelectSize:
		return s.configurator.SelectSize(cfg, value)
	case SelectFilling:
		return s.configurator.ToggleFilling(cfg, value)
	case SelectFrosting:
		return s.configurator.SelectFrosting(cfg, value)
	case SelectAddon:
		return s.configurator.ToggleAddon(cfg, value)
	case SelectMessage:
		return s.configurator.SetMessage(cfg, cmd.Value), nil
	default:
		return cfg, fmt.Errorf("%w: unknown field %q", ErrCustomizerInvalidInput, cmd.Field)
	}
}

// Advance moves to the next step when the current one is satisfied. A refusal
// leaves the session unchanged and reports false without an error.
func (s *customizerService) Advance(ctx context.Context, sessionID string) (CustomizerSession, bool, error) {
	if err := ctx.Err(); err != nil {
		return CustomizerSession{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(sessionID)
	if err != nil {
		return CustomizerSession{}, false, err
	}
	if session.step.Last() || !CanAdvance(session.cfg, session.step) {
		return s.snapshot(session), false, nil
	}
	session.step++
	session.updatedAt = s.clock()
	return s.snapshot(session), true, nil
}

func (s *customizerService) Back(ctx context.Context, sessionID string) (CustomizerSession, error) {
	if err := ctx.Err(); err != nil {
		return CustomizerSession{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.lookup(sessionID)
	if err != nil {
		return CustomizerSession{}, err
	}
	if session.step > StepBase {
		session.step--
		session.updatedAt = s.clock()
	}
	return s.snapshot(session), nil
}

// AddToCart finalises the configuration, appends it to the cart and ends the
// session. The session is claimed before the cart write so it yields at most
// one cake; it is restored when the cart write fails. An incomplete
// configuration keeps the session.
func (s *customizerService) AddToCart(ctx context.Context, sessionID string) (CustomCake, error) {
	s.mu.Lock()
	session, err := s.lookup(sessionID)
	if err != nil {
		s.mu.Unlock()
		return CustomCake{}, err
	}
	cake, err := s.configurator.Finalize(session.cfg, s.newID())
	if err != nil {
		s.mu.Unlock()
		return CustomCake{}, err
	}
	delete(s.sessions, session.id)
	s.mu.Unlock()

	cart, err := s.cart.Add(ctx, cake)
	if err != nil {
		s.mu.Lock()
		if _, taken := s.sessions[session.id]; !taken {
			s.sessions[session.id] = session
		}
		s.mu.Unlock()
		return CustomCake{}, err
	}
	added := cart[len(cart)-1]

	s.logger(ctx, "customizer.session.completed", map[string]any{
		"sessionID": session.id,
		"cakeID":    added.ID,
	})
	return added, nil
}

func (s *customizerService) Discard(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.lookup(sessionID); err != nil {
		return err
	}
	delete(s.sessions, strings.TrimSpace(sessionID))
	return nil
}

// Prune drops sessions idle for longer than the TTL and reports how many were removed.
func (s *customizerService) Prune(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if s.expired(session, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// lookup must be called with mu held.
func (s *customizerService) lookup(sessionID string) (*customizerSession, error) {
	id := strings.TrimSpace(sessionID)
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCustomizerSessionNotFound, id)
	}
	if s.expired(session, s.clock()) {
		delete(s.sessions, id)
		return nil, fmt.Errorf("%w: %s", ErrCustomizerSessionNotFound, id)
	}
	return session, nil
}

func (s *customizerService) expired(session *customizerSession, now time.Time) bool {
	return now.Sub(session.updatedAt) > s.ttl
}

func (s *customizerService) snapshot(session *customizerSession) CustomizerSession {
	cfg := session.cfg.Clone()
	return CustomizerSession{
		ID:            session.id,
		Configuration: cfg,
		Step:          session.step,
		Price:         s.configurator.Price(cfg),
		Breakdown:     s.configurator.rules.Breakdown(cfg),
		CanAdvance:    !session.step.Last() && CanAdvance(cfg, session.step),
		Complete:      IsComplete(cfg),
		CreatedAt:     session.createdAt,
		UpdatedAt:     session.updatedAt,
	}
}
