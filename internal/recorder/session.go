// Package recorder journals completed rotations to storage.
package recorder

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SeamusWaldron/rubikal"
	"github.com/SeamusWaldron/rubikal/internal/storage"
)

// Errors
var (
	ErrAlreadyRecording = errors.New("recorder: session already in progress")
	ErrNotRecording     = errors.New("recorder: no session in progress")
)

// SessionState represents the current state of a recording session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateRecording
	StateEnded
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Session records one cube's completed rotations under a session ID.
// The journal is write-only from the cube's point of view: nothing here
// ever replays rotations back into a cube.
type Session struct {
	stateFile *StateFile
	logger    *slog.Logger

	mu        sync.Mutex
	state     SessionState
	sessionID string
	startTime time.Time
	count     int
	lastErr   error

	sessions  *storage.SessionRepository
	rotations *storage.RotationRepository
}

// NewSession creates a session manager. stateFile may be nil.
func NewSession(db *storage.DB, stateFile *StateFile, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		stateFile: stateFile,
		logger:    logger,
		state:     StateIdle,
		sessions:  storage.NewSessionRepository(db),
		rotations: storage.NewRotationRepository(db),
	}
}

// Start opens a new session in the journal.
func (s *Session) Start(source, notes string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRecording {
		return "", ErrAlreadyRecording
	}

	id, err := s.sessions.Create(source, notes)
	if err != nil {
		return "", err
	}

	s.sessionID = id
	s.startTime = time.Now()
	s.count = 0
	s.lastErr = nil
	s.state = StateRecording

	if s.stateFile != nil {
		if err := s.stateFile.SetLastSession(id); err != nil {
			s.logger.Warn("failed to update state file", "error", err)
		}
	}

	s.logger.Debug("session started", "session", id, "source", source)
	return id, nil
}

// End closes the current session.
func (s *Session) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return ErrNotRecording
	}

	if err := s.sessions.End(s.sessionID); err != nil {
		return err
	}

	s.state = StateEnded
	s.logger.Debug("session ended", "session", s.sessionID, "rotations", s.count)
	return nil
}

// Record appends a completed rotation. It is a no-op unless recording.
func (s *Session) Record(ev rubikal.RotationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return nil
	}

	_, err := s.rotations.Append(storage.RotationRecord{
		SessionID:    s.sessionID,
		Seq:          ev.Seq,
		Token:        ev.Rotation.Token(),
		Slice:        ev.Rotation.Slice.String(),
		Direction:    ev.Rotation.Direction.String(),
		StartTick:    ev.StartTick,
		CompleteTick: ev.CompleteTick,
	})
	if err != nil {
		s.lastErr = fmt.Errorf("failed to record rotation %d: %w", ev.Seq, err)
		return s.lastErr
	}

	s.count++
	return nil
}

// Hook returns a completion callback for rubikal.OnRotationComplete.
// Write failures are logged and kept for Err.
func (s *Session) Hook() func(rubikal.RotationEvent) {
	return func(ev rubikal.RotationEvent) {
		if err := s.Record(ev); err != nil {
			s.logger.Error("journal write failed", "error", err)
		}
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SessionID returns the current session ID.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Count returns the number of rotations recorded in this session.
func (s *Session) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRecording {
		return 0
	}
	return time.Since(s.startTime)
}

// Err returns the most recent write failure, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
