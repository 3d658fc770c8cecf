//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"council/domain"
	"council/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	sessionPrefix     = "session:"
	currentSessionKey = "current-session"
)

type ISessionRepository interface {
	GetAllSessions() ([]domain.Session, error)
	GetSession(id string) (domain.Session, error)
	SaveSession(session domain.Session) error
	DeleteSession(id string) error
	GetCurrentSessionID() (*string, error)
	SetCurrentSessionID(id string) error
	ClearCurrentSessionID() error
}

type SessionRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewSessionRepository(db *badger.DB, log *slog.Logger) SessionRepository {
	return SessionRepository{db: db, log: log}
}

// DiskSession is the persisted representation of a session.
// Timestamps are stored as RFC 3339 strings with nanosecond precision
// so they round-trip to the same instant.
type DiskSession struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	CreatedAt    string            `json:"createdAt"`
	UpdatedAt    string            `json:"updatedAt"`
	Participants []DiskParticipant `json:"participants"`
	Messages     []DiskMessage     `json:"messages"`
}

type DiskParticipant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Active   bool   `json:"active"`
	Color    string `json:"color"`
	Role     string `json:"role,omitempty"`
}

type DiskMessage struct {
	ID            string `json:"id"`
	Content       string `json:"content"`
	Sender        string `json:"sender"`
	Timestamp     string `json:"timestamp"`
	ParticipantID string `json:"participantId,omitempty"`
}

// GetAllSessions scans the session prefix and returns every persisted
// session ordered by creation time.
func (r SessionRepository) GetAllSessions() ([]domain.Session, error) {
	var records [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		prefix := []byte(sessionPrefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(value []byte) error {
				records = append(records, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	sessions := make([]domain.Session, 0, len(records))
	for _, record := range records {
		var disk DiskSession
		if err = json.Unmarshal(record, &disk); err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
		}
		session, err := toSession(disk)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
		}
		sessions = append(sessions, session)
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (r SessionRepository) GetSession(id string) (domain.Session, error) {
	var record []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			record = append([]byte(nil), value...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Session{}, errors.ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}

	var disk DiskSession
	if err = json.Unmarshal(record, &disk); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	session, err := toSession(disk)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return session, nil
}

// SaveSession upserts by id: re-saving an existing id replaces the
// stored record, never duplicates it.
func (r SessionRepository) SaveSession(session domain.Session) error {
	bytes, err := json.Marshal(fromSession(session))
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(sessionPrefix+session.ID), bytes)
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return nil
}

func (r SessionRepository) DeleteSession(id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionPrefix + id))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return nil
}

// GetCurrentSessionID returns nil when no current session is recorded.
func (r SessionRepository) GetCurrentSessionID() (*string, error) {
	var id string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currentSessionKey))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			id = string(value)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return &id, nil
}

func (r SessionRepository) SetCurrentSessionID(id string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(currentSessionKey), []byte(id))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return nil
}

func (r SessionRepository) ClearCurrentSessionID() error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(currentSessionKey))
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrPersistence, err)
	}
	return nil
}

func fromSession(session domain.Session) DiskSession {
	return DiskSession{
		ID:        session.ID,
		Title:     session.Title,
		CreatedAt: session.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: session.UpdatedAt.Format(time.RFC3339Nano),
		Participants: lo.Map(session.Participants, func(p domain.Participant, _ int) DiskParticipant {
			return DiskParticipant{
				ID:       p.ID,
				Name:     p.Name,
				Provider: p.Provider,
				Active:   p.Active,
				Color:    p.Color,
				Role:     p.Role,
			}
		}),
		Messages: lo.Map(session.Messages, func(m domain.Message, _ int) DiskMessage {
			return DiskMessage{
				ID:            m.ID.String(),
				Content:       m.Content,
				Sender:        m.Sender,
				Timestamp:     m.Timestamp.Format(time.RFC3339Nano),
				ParticipantID: m.ParticipantID,
			}
		}),
	}
}

func toSession(disk DiskSession) (domain.Session, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, disk.CreatedAt)
	if err != nil {
		return domain.Session{}, err
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, disk.UpdatedAt)
	if err != nil {
		return domain.Session{}, err
	}

	messages := make([]domain.Message, 0, len(disk.Messages))
	for _, m := range disk.Messages {
		parsedID, err := uuid.Parse(m.ID)
		if err != nil {
			return domain.Session{}, err
		}
		at, err := time.Parse(time.RFC3339Nano, m.Timestamp)
		if err != nil {
			return domain.Session{}, err
		}
		messages = append(messages, domain.Message{
			ID:            parsedID,
			Content:       m.Content,
			Sender:        m.Sender,
			Timestamp:     at,
			ParticipantID: m.ParticipantID,
		})
	}

	return domain.Session{
		ID:        disk.ID,
		Title:     disk.Title,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Participants: lo.Map(disk.Participants, func(p DiskParticipant, _ int) domain.Participant {
			return domain.Participant{
				ID:       p.ID,
				Name:     p.Name,
				Provider: p.Provider,
				Active:   p.Active,
				Color:    p.Color,
				Role:     p.Role,
			}
		}),
		Messages: messages,
	}, nil
}
