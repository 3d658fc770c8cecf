package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"council/domain"
	"council/errors"
	"council/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type ISessionService interface {
	CreateSession() (domain.Session, error)
	SelectSession(id string) (domain.Session, error)
	DeleteSession(id string) error
	UpdateParticipant(sessionID, participantID string, update ParticipantUpdate) (domain.Session, error)
	SubmitUserMessage(ctx context.Context, sessionID, content string) (domain.Session, error)
	ListSessions() ([]domain.Session, error)
	CurrentSession() (*domain.Session, error)
}

// IDispatcher is the orchestration contract the service depends on.
// *runtime.Dispatcher is the production implementation.
type IDispatcher interface {
	Dispatch(ctx context.Context, roster []domain.Participant, transcript []domain.Message, utterance string) []domain.Message
}

// ParticipantUpdate is a partial roster-entry update. Nil fields are
// left untouched; the participant id itself is immutable.
type ParticipantUpdate struct {
	Name   *string
	Active *bool
	Color  *string
	Role   *string
}

// SessionService owns the session lifecycle. All mutation of one
// session id is serialized behind a per-session mutex so a role toggle
// and a concurrent message append cannot lose updates. Distinct
// sessions proceed independently.
type SessionService struct {
	log        *slog.Logger
	repository repositories.ISessionRepository
	dispatcher IDispatcher
	clock      func() time.Time
	newID      func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSessionService(log *slog.Logger, repository repositories.ISessionRepository, dispatcher IDispatcher) *SessionService {
	return &SessionService{
		log:        log,
		repository: repository,
		dispatcher: dispatcher,
		clock:      time.Now,
		newID:      uuid.NewString,
		locks:      map[string]*sync.Mutex{},
	}
}

// WithClock overrides the timestamp source, for tests.
func (s *SessionService) WithClock(clock func() time.Time) *SessionService {
	s.clock = clock
	return s
}

// WithIDGenerator overrides session id generation, for tests.
func (s *SessionService) WithIDGenerator(newID func() string) *SessionService {
	s.newID = newID
	return s
}

// CreateSession allocates a fresh session with the default roster and
// an empty transcript, persists it and makes it current.
func (s *SessionService) CreateSession() (domain.Session, error) {
	session := domain.NewSession(s.newID(), s.clock().UTC())
	if err := s.repository.SaveSession(*session); err != nil {
		return domain.Session{}, err
	}
	if err := s.repository.SetCurrentSessionID(session.ID); err != nil {
		return domain.Session{}, err
	}
	s.log.Info("Session created", "session", session.ID)
	return *session, nil
}

// SelectSession loads a persisted session and makes it current.
// A lookup miss changes no state.
func (s *SessionService) SelectSession(id string) (domain.Session, error) {
	session, err := s.repository.GetSession(id)
	if err != nil {
		return domain.Session{}, err
	}
	if err = s.repository.SetCurrentSessionID(id); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// DeleteSession removes a persisted session. If it was the current
// session, the current-session pointer is cleared; otherwise the
// pointer is left untouched.
func (s *SessionService) DeleteSession(id string) error {
	lock := s.sessionLock(id)
	lock.Lock()
	defer lock.Unlock()

	if err := s.repository.DeleteSession(id); err != nil {
		return err
	}
	current, err := s.repository.GetCurrentSessionID()
	if err != nil {
		return err
	}
	if current != nil && *current == id {
		return s.repository.ClearCurrentSessionID()
	}
	return nil
}

// UpdateParticipant applies a partial update to exactly one roster
// entry by id match, bumps UpdatedAt and persists.
func (s *SessionService) UpdateParticipant(sessionID, participantID string, update ParticipantUpdate) (domain.Session, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repository.GetSession(sessionID)
	if err != nil {
		return domain.Session{}, err
	}

	participant := session.FindParticipant(participantID)
	if participant == nil {
		return domain.Session{}, fmt.Errorf("%w: %s in session %s", errors.ErrParticipantNotFound, participantID, sessionID)
	}
	if update.Name != nil {
		participant.Name = *update.Name
	}
	if update.Active != nil {
		participant.Active = *update.Active
	}
	if update.Color != nil {
		participant.Color = *update.Color
	}
	if update.Role != nil {
		participant.Role = *update.Role
	}
	session.Touch(s.clock().UTC())

	if err = s.repository.SaveSession(session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

type submitRequest struct {
	SessionID string `validate:"required"`
	Content   string `validate:"required,max=4000"`
}

// SubmitUserMessage appends a user message, runs one dispatch cycle
// over the active roster and persists everything with a single
// write-through: either the full post-submission transcript lands in
// the store or nothing does. A submission racing an outstanding
// dispatch on the same session is rejected, never interleaved.
func (s *SessionService) SubmitUserMessage(ctx context.Context, sessionID, content string) (domain.Session, error) {
	if err := validate.Struct(submitRequest{SessionID: sessionID, Content: content}); err != nil {
		return domain.Session{}, err
	}

	lock := s.sessionLock(sessionID)
	if !lock.TryLock() {
		return domain.Session{}, fmt.Errorf("%w: session %s", errors.ErrSubmissionInFlight, sessionID)
	}
	defer lock.Unlock()

	session, err := s.repository.GetSession(sessionID)
	if err != nil {
		return domain.Session{}, err
	}

	now := s.clock().UTC()
	firstUserMessage := !session.HasUserMessage()
	userMessage := domain.NewUserMessage(content, now)
	transcript := append(session.Clone().Messages, userMessage)

	replies := s.dispatcher.Dispatch(ctx, session.Participants, transcript, content)

	// A torn-down host context abandons the cycle before any write,
	// leaving the persisted transcript at its pre-submission state.
	if err = ctx.Err(); err != nil {
		s.log.Warn("Dispatch cycle abandoned", "session", sessionID, "error", err)
		return domain.Session{}, err
	}

	session.Append(now, userMessage)
	session.Append(s.clock().UTC(), replies...)
	if firstUserMessage {
		session.Title = domain.DeriveTitle(content)
	}

	if err = s.repository.SaveSession(session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *SessionService) ListSessions() ([]domain.Session, error) {
	return s.repository.GetAllSessions()
}

// CurrentSession restores the session the current-session pointer
// refers to, or nil when no pointer is set. A dangling pointer is
// treated as unset.
func (s *SessionService) CurrentSession() (*domain.Session, error) {
	current, err := s.repository.GetCurrentSessionID()
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	session, err := s.repository.GetSession(*current)
	if err == errors.ErrSessionNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// sessionLock returns the mutex guarding one session id, creating it
// on first use.
func (s *SessionService) sessionLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
