// Package session holds the per-actor UI state: the latest read-side
// datasets, the transient input drafts, and the actor's transaction
// orchestrator. At most one transaction is in flight per session.
package session

import (
	"context"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/winsznx/celo-guestbook/internal/contract"
	"github.com/winsznx/celo-guestbook/internal/txflow"
	"go.uber.org/zap"
)

// Data is the read-side state the main UI depends on. It is refreshed as
// a whole after every confirmed transaction.
type Data struct {
	Messages    []contract.Message `json:"messages"`
	AllTodos    []contract.Todo    `json:"all_todos"`
	UserTodos   []contract.Todo    `json:"user_todos"`
	PassBalance uint64             `json:"pass_balance"`
}

// Draft mirrors the form inputs. The fields belonging to an operation are
// cleared when that operation succeeds.
type Draft struct {
	Name            string `json:"name"`
	Message         string `json:"message"`
	TodoTitle       string `json:"todo_title"`
	TodoDescription string `json:"todo_description"`
}

type Session struct {
	account contract.Address
	reader  contract.Reader
	orch    *txflow.Orchestrator
	log     *zap.Logger

	mu    sync.RWMutex
	data  Data
	draft Draft
}

func (s *Session) Account() contract.Address { return s.account }

func (s *Session) Orchestrator() *txflow.Orchestrator { return s.orch }

func (s *Session) Data() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Session) Draft() Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

func (s *Session) SetDraft(d Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = d
}

// ClearInputs drops the transient inputs belonging to the operation that
// just completed. Other drafts are left alone.
func (s *Session) ClearInputs(op contract.Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch op {
	case contract.OpPostMessage:
		s.draft.Name, s.draft.Message = "", ""
	case contract.OpCreateTodo:
		s.draft.TodoTitle, s.draft.TodoDescription = "", ""
	}
}

// Refresh re-requests every dataset once. Read failures are logged and
// absorbed; whatever succeeded replaces the previous value.
func (s *Session) Refresh(ctx context.Context, account contract.Address) {
	messages, msgErr := s.reader.AllMessages(ctx)
	if msgErr != nil {
		s.log.Warn("refresh messages failed", zap.Error(msgErr))
	}
	allTodos, todosErr := s.reader.AllTodos(ctx)
	if todosErr != nil {
		s.log.Warn("refresh todos failed", zap.Error(todosErr))
	}
	userTodos, userErr := s.reader.UserTodos(ctx, account)
	if userErr != nil {
		s.log.Warn("refresh user todos failed", zap.Error(userErr))
	}
	balance, balErr := s.reader.PassBalance(ctx, account)
	if balErr != nil {
		s.log.Warn("refresh pass balance failed", zap.Error(balErr))
	}

	// A successful read replaces the dataset even when it comes back
	// empty: deleting the last todo legitimately yields a nil slice.
	s.mu.Lock()
	defer s.mu.Unlock()
	if msgErr == nil {
		s.data.Messages = messages
	}
	if todosErr == nil {
		s.data.AllTodos = allTodos
	}
	if userErr == nil {
		s.data.UserTodos = userTodos
	}
	if balErr == nil {
		s.data.PassBalance = balance
	}
}

// Manager hands out one session per actor address, shared across
// concurrent API requests.
type Manager struct {
	sessions     cmap.ConcurrentMap[string, *Session]
	reader       contract.Reader
	submitter    contract.Submitter
	refreshDelay time.Duration
	log          *zap.Logger
}

func NewManager(reader contract.Reader, submitter contract.Submitter, refreshDelay time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		sessions:     cmap.New[*Session](),
		reader:       reader,
		submitter:    submitter,
		refreshDelay: refreshDelay,
		log:          log,
	}
}

// Peek returns the session for account if one exists, without creating
// it. Read-only endpoints use it so arbitrary address probes cannot grow
// the registry.
func (m *Manager) Peek(account contract.Address) *Session {
	s, _ := m.sessions.Get(string(account))
	return s
}

func (m *Manager) Get(account contract.Address) *Session {
	key := string(account)
	if s, ok := m.sessions.Get(key); ok {
		return s
	}
	s := &Session{
		account: account,
		reader:  m.reader,
		log:     m.log,
	}
	s.orch = txflow.New(txflow.Config{
		Submitter:    m.submitter,
		Refresher:    s,
		ClearInputs:  s.ClearInputs,
		RefreshDelay: m.refreshDelay,
		Logger:       m.log,
	})
	if !m.sessions.SetIfAbsent(key, s) {
		existing, _ := m.sessions.Get(key)
		return existing
	}
	return s
}
