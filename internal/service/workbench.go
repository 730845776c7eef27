package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/card-workbench/internal/workbench"
)

// timeNow is swapped in tests
var timeNow = time.Now

// Flusher drops every cached corpus
type Flusher interface {
	FlushAll(ctx context.Context) (int64, error)
}

// WorkbenchConfig tunes the session host
type WorkbenchConfig struct {
	Session   workbench.Options
	IdleTTL   time.Duration
	MaxSess   int
	OpTimeout time.Duration
}

// WorkbenchService hosts workbench sessions keyed by id
type WorkbenchService struct {
	catalog   Catalog
	responder workbench.Responder
	cache     Flusher
	cfg       WorkbenchConfig

	mu       sync.RWMutex
	sessions map[string]*workbench.Session
}

// NewWorkbenchService creates a new session host. cache may be nil.
func NewWorkbenchService(catalog Catalog, responder workbench.Responder, cache Flusher, cfg WorkbenchConfig) *WorkbenchService {
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 30 * time.Second
	}
	if cfg.Session.Clock == nil {
		cfg.Session.Clock = func() time.Time { return timeNow() }
	}
	return &WorkbenchService{
		catalog:   catalog,
		responder: responder,
		cache:     cache,
		cfg:       cfg,
		sessions:  make(map[string]*workbench.Session),
	}
}

// OpContext detaches ctx from its caller's cancellation and bounds it by
// the collaborator timeout. A client going away must not cancel a chat
// turn halfway through.
func (s *WorkbenchService) OpContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.cfg.OpTimeout)
}

// CreateSession opens a session for userID (0 means unknown) and loads the
// catalog into it. Load failures are recorded on the session and returned
// alongside it; the session is usable either way.
func (s *WorkbenchService) CreateSession(ctx context.Context, userID int64) (*workbench.Session, error) {
	sess := workbench.NewSession(uuid.New().String(), s.catalog, s.responder, s.cfg.Session)
	if userID > 0 {
		sess.SetCurrentUser(userID)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.enforceLimit(sess.ID)
	s.mu.Unlock()

	loadErr := sess.Load(ctx)
	if loadErr != nil {
		log.Warn().Err(loadErr).Str("session_id", sess.ID).Msg("session created with partial catalog")
	} else {
		log.Info().Str("session_id", sess.ID).Int64("user_id", userID).Msg("session created")
	}
	return sess, loadErr
}

// enforceLimit evicts the least recently active sessions above the cap,
// never keep. Caller holds mu.
func (s *WorkbenchService) enforceLimit(keep string) {
	if s.cfg.MaxSess <= 0 || len(s.sessions) <= s.cfg.MaxSess {
		return
	}

	type entry struct {
		id   string
		seen time.Time
	}
	entries := make([]entry, 0, len(s.sessions))
	for id, sess := range s.sessions {
		if id != keep {
			entries = append(entries, entry{id: id, seen: sess.LastActive()})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seen.Before(entries[j].seen) })

	for _, e := range entries[:len(s.sessions)-s.cfg.MaxSess] {
		delete(s.sessions, e.id)
		log.Info().Str("session_id", e.id).Msg("session evicted over limit")
	}
}

// Session returns a session by id
func (s *WorkbenchService) Session(id string) (*workbench.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// DeleteSession drops a session
func (s *WorkbenchService) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Count returns the number of live sessions
func (s *WorkbenchService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// EvictIdle drops sessions idle for longer than the configured TTL and
// returns how many went.
func (s *WorkbenchService) EvictIdle() int {
	if s.cfg.IdleTTL <= 0 {
		return 0
	}
	cutoff := timeNow().Add(-s.cfg.IdleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunJanitor evicts idle sessions every interval until ctx is done
func (s *WorkbenchService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.EvictIdle(); n > 0 {
				log.Info().Int("evicted", n).Int("remaining", s.Count()).Msg("idle sessions evicted")
			}
		}
	}
}

// FlushCache drops the cached corpus; without a cache it is a no-op
func (s *WorkbenchService) FlushCache(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.FlushAll(ctx)
}

// Ready checks the catalog is reachable
func (s *WorkbenchService) Ready(ctx context.Context) error {
	return s.catalog.HealthCheck(ctx)
}
