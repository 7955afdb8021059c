package identity

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

type fakeStore struct {
	stored  *Identity
	loadErr error
	saveErr error

	saves  int
	clears int
}

func (f *fakeStore) Load() (*Identity, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.stored, nil
}

func (f *fakeStore) Save(id *Identity) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = id
	return nil
}

func (f *fakeStore) Clear() error {
	f.clears++
	f.stored = nil
	return nil
}

func newTestReconciler(store Store) *Reconciler {
	r := NewReconciler(store, zap.NewNop())
	r.Bootstrap()
	return r
}

func TestSnapshotWithNoSources(t *testing.T) {
	r := newTestReconciler(&fakeStore{})
	snap := r.Snapshot()
	if snap.Identity != nil || snap.IsAuthenticated || snap.IsEmbedded {
		t.Fatalf("expected signed-out snapshot, got %+v", snap)
	}
}

func TestPersistedIdentityRestoredOnBootstrap(t *testing.T) {
	r := newTestReconciler(&fakeStore{stored: &Identity{ID: "42", Handle: "ada"}})
	snap := r.Snapshot()
	if !snap.IsAuthenticated || snap.IsEmbedded {
		t.Fatalf("expected persisted session, got %+v", snap)
	}
	if snap.Identity.Handle != "ada" {
		t.Fatalf("expected handle ada, got %s", snap.Identity.Handle)
	}
}

func TestEmbeddedOverridesPersisted(t *testing.T) {
	r := newTestReconciler(&fakeStore{stored: &Identity{ID: "42", Handle: "ada"}})
	r.SetEmbedded(&Identity{ID: "7", Handle: "host-account"})

	snap := r.Snapshot()
	if !snap.IsEmbedded {
		t.Fatal("expected embedded source to win")
	}
	if snap.Identity.ID != "7" {
		t.Fatalf("expected embedded identity, got %s", snap.Identity.ID)
	}
}

func TestCorruptPersistedRecordDiscardedAndRemoved(t *testing.T) {
	store := &fakeStore{loadErr: &PersistenceError{Op: "load", Err: errors.New("invalid character")}}
	r := newTestReconciler(store)

	snap := r.Snapshot()
	if snap.IsAuthenticated {
		t.Fatalf("corrupt record must resolve to signed out, got %+v", snap)
	}
	if store.clears != 1 {
		t.Fatalf("expected corrupt record to be removed once, got %d clears", store.clears)
	}
}

func TestCompleteSignInPersistsAndResolves(t *testing.T) {
	store := &fakeStore{}
	r := newTestReconciler(store)

	if err := r.CompleteSignIn(Profile{FID: 42, Username: "ada"}); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	snap := r.Snapshot()
	if !snap.IsAuthenticated || snap.IsEmbedded {
		t.Fatalf("expected interactive session, got %+v", snap)
	}
	if snap.Identity.ID != "42" || snap.Identity.Handle != "ada" {
		t.Fatalf("unexpected identity %+v", snap.Identity)
	}
	if store.stored == nil {
		t.Fatal("expected identity to be persisted")
	}
}

func TestCompleteSignInIgnoredWhileEmbedded(t *testing.T) {
	store := &fakeStore{}
	r := newTestReconciler(store)
	r.SetEmbedded(&Identity{ID: "7", Handle: "host-account"})

	if err := r.CompleteSignIn(Profile{FID: 42, Username: "ada"}); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if store.saves != 0 {
		t.Fatalf("sign-in must not be persisted while embedded, got %d saves", store.saves)
	}
	snap := r.Snapshot()
	if snap.Identity.ID != "7" {
		t.Fatalf("embedded identity must stay authoritative, got %+v", snap.Identity)
	}
}

func TestCompleteSignInSurvivesSaveFailure(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("disk full")}
	r := newTestReconciler(store)

	err := r.CompleteSignIn(Profile{FID: 42, Username: "ada"})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *PersistenceError, got %v", err)
	}
	// The session still holds the identity even though the reload won't.
	snap := r.Snapshot()
	if !snap.IsAuthenticated || snap.Identity.Handle != "ada" {
		t.Fatalf("identity must be current in memory, got %+v", snap)
	}
}

func TestSignOutClearsEverySource(t *testing.T) {
	store := &fakeStore{stored: &Identity{ID: "42", Handle: "ada"}}
	r := newTestReconciler(store)
	r.SetEmbedded(&Identity{ID: "7", Handle: "host-account"})

	r.SignOut()

	snap := r.Snapshot()
	if snap.IsAuthenticated || snap.Identity != nil {
		t.Fatalf("expected signed-out snapshot, got %+v", snap)
	}
	if store.clears != 1 {
		t.Fatalf("expected persisted record removed, got %d clears", store.clears)
	}
}

func TestSnapshotReturnsACopy(t *testing.T) {
	r := newTestReconciler(&fakeStore{})
	r.SetEmbedded(&Identity{ID: "7", Handle: "host-account", VerifiedAddresses: []string{"0xcafe"}})

	snap := r.Snapshot()
	snap.Identity.Handle = "mutated"
	snap.Identity.VerifiedAddresses[0] = "0xdead"

	again := r.Snapshot()
	if again.Identity.Handle != "host-account" || again.Identity.VerifiedAddresses[0] != "0xcafe" {
		t.Fatalf("snapshot mutation leaked into the reconciler: %+v", again.Identity)
	}
}
