package identity

import (
	"sync"

	"go.uber.org/zap"
)

// Snapshot is the read-only view handed to consumers.
type Snapshot struct {
	Identity        *Identity `json:"identity,omitempty"`
	IsAuthenticated bool      `json:"is_authenticated"`
	IsEmbedded      bool      `json:"is_embedded"`
}

type sourceKind int

const (
	sourceEmbedded sourceKind = iota
	sourcePersisted
	sourceNone
)

// source is a tagged identity variant; the reconciler picks the first
// populated one in precedence order.
type source struct {
	kind     sourceKind
	identity *Identity
}

// Reconciler merges the embedded-context account, the persisted session
// and interactive sign-in completions into one current identity.
type Reconciler struct {
	mu       sync.Mutex
	log      *zap.Logger
	store    Store
	embedded *Identity
	local    *Identity // persisted record or completed interactive sign-in
	loaded   bool
}

func NewReconciler(store Store, log *zap.Logger) *Reconciler {
	return &Reconciler{log: log, store: store}
}

// Bootstrap loads the persisted identity. It must complete before the
// first Snapshot so a known session is never reported as signed out. A
// corrupt persisted record is discarded and removed, never surfaced.
func (r *Reconciler) Bootstrap() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return
	}
	r.loaded = true
	id, err := r.store.Load()
	if err != nil {
		r.log.Warn("discarding corrupt persisted identity", zap.Error(err))
		if cerr := r.store.Clear(); cerr != nil {
			r.log.Warn("failed to remove corrupt persisted identity", zap.Error(cerr))
		}
		return
	}
	r.local = id
}

// SetEmbedded installs (or clears) the account supplied by the
// embedded-context detector. An embedded account overrides every other
// source for as long as it is present.
func (r *Reconciler) SetEmbedded(id *Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedded = id.clone()
}

// CompleteSignIn records a finished interactive sign-in. It is ignored
// while an embedded account is authoritative. The normalized identity is
// current for this session even if persisting it fails; the failure is
// reported so callers know the next reload will not see it.
func (r *Reconciler) CompleteSignIn(p Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.embedded != nil {
		r.log.Debug("ignoring interactive sign-in while embedded", zap.String("handle", p.Username))
		return nil
	}
	id := Normalize(p)
	r.local = id
	if err := r.store.Save(id); err != nil {
		r.log.Warn("identity persisted for this session only", zap.Error(err))
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// SignOut clears the current identity and removes the persisted record.
// When embedded it is a local-only operation: the embedding host's own
// session cannot be revoked from here, and a remount of the session will
// re-detect it.
func (r *Reconciler) SignOut() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.embedded = nil
	r.local = nil
	if err := r.store.Clear(); err != nil {
		r.log.Warn("failed to remove persisted identity", zap.Error(err))
	}
}

// Snapshot resolves the precedence order and returns a copy of the
// authoritative identity.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	src := resolve([]source{
		{kind: sourceEmbedded, identity: r.embedded},
		{kind: sourcePersisted, identity: r.local},
	})
	return Snapshot{
		Identity:        src.identity.clone(),
		IsAuthenticated: src.identity != nil,
		IsEmbedded:      src.kind == sourceEmbedded,
	}
}

func resolve(ordered []source) source {
	for _, s := range ordered {
		if s.identity != nil {
			return s
		}
	}
	return source{kind: sourceNone}
}
