// README: Registry of open reconciliation sessions.
package reconciliation

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/types"
)

type RecordSource interface {
	Get(ctx context.Context, id types.ID) (*delivery.Record, error)
}

type Deps struct {
	// NewCalculator returns the calculator a new session rates with. Production wiring
	// binds it to a fresh rate table snapshot per session.
	NewCalculator func() Calculator
	Submitter     Submitter
	Records       RecordSource
	Debounce      time.Duration
	Logger        *zap.Logger
}

type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[types.ID]*Session
}

func NewManager(deps Deps) *Manager {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Manager{deps: deps, sessions: make(map[types.ID]*Session)}
}

type OpenCommand struct {
	// DeliveryID opens an existing record for editing. Empty opens Draft.
	DeliveryID types.ID
	Draft      delivery.Record
}

func (m *Manager) Open(ctx context.Context, cmd OpenCommand) (*Session, error) {
	record := cmd.Draft
	if !cmd.DeliveryID.Empty() {
		r, err := m.deps.Records.Get(ctx, cmd.DeliveryID)
		if err != nil {
			return nil, err
		}
		record = *r
	}

	id := types.ID(ulid.Make().String())
	s := newSession(id, record, m.deps.NewCalculator(), m.deps.Submitter, m.deps.Debounce, m.deps.Logger)
	s.onDone = m.forget

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	s.start(ctx)
	m.deps.Logger.Debug("reconciliation session opened",
		zap.String("session_id", id.String()),
		zap.String("delivery_id", record.ID.String()),
	)
	return s, nil
}

func (m *Manager) Get(id types.ID) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) Close(id types.ID) error {
	s, err := m.Get(id)
	if err != nil {
		return err
	}
	s.Close()
	return nil
}

// CloseAll discards every open session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	open := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		open = append(open, s)
	}
	m.mu.Unlock()
	for _, s := range open {
		s.Close()
	}
}

func (m *Manager) forget(id types.ID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
