package embedctx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/winsznx/celo-guestbook/internal/identity"
	"go.uber.org/zap"
)

type fakeHost struct {
	account    *identity.Identity
	contextErr error

	contexts  int
	dismissed int
}

func (f *fakeHost) Context(ctx context.Context) (*identity.Identity, error) {
	f.contexts++
	if f.contextErr != nil {
		return nil, f.contextErr
	}
	return f.account, nil
}

func (f *fakeHost) DismissSplash(ctx context.Context) error {
	f.dismissed++
	return nil
}

func TestRunWithHostAccount(t *testing.T) {
	host := &fakeHost{account: &identity.Identity{ID: "7", Handle: "host-account"}}
	d := NewDetector(host, zap.NewNop())

	d.Run(context.Background())

	ready, account := d.State()
	if !ready {
		t.Fatal("expected detector to be ready")
	}
	if account == nil || account.ID != "7" {
		t.Fatalf("expected host account, got %+v", account)
	}
	if host.dismissed != 1 {
		t.Fatalf("expected one splash dismissal, got %d", host.dismissed)
	}
}

func TestRunWithoutAccountKeepsSplash(t *testing.T) {
	host := &fakeHost{}
	d := NewDetector(host, zap.NewNop())

	d.Run(context.Background())

	ready, account := d.State()
	if !ready || account != nil {
		t.Fatalf("expected ready with no account, got ready=%v account=%+v", ready, account)
	}
	if host.dismissed != 0 {
		t.Fatalf("splash must stay up without an account, got %d dismissals", host.dismissed)
	}
}

func TestFailedHandshakeIsTerminal(t *testing.T) {
	host := &fakeHost{contextErr: errors.New("host unreachable")}
	d := NewDetector(host, zap.NewNop())

	d.Run(context.Background())

	ready, account := d.State()
	if !ready || account != nil {
		t.Fatalf("failed handshake must resolve as ready with no account, got ready=%v account=%+v", ready, account)
	}

	// The handshake runs once per session; a second Run must not retry.
	host.contextErr = nil
	host.account = &identity.Identity{ID: "7"}
	d.Run(context.Background())
	if host.contexts != 1 {
		t.Fatalf("expected a single handshake, got %d", host.contexts)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	host := &fakeHost{account: &identity.Identity{ID: "7"}}
	d := NewDetector(host, zap.NewNop())

	d.Run(context.Background())
	d.Run(context.Background())
	d.Run(context.Background())

	if host.contexts != 1 {
		t.Fatalf("expected one handshake, got %d", host.contexts)
	}
	if host.dismissed != 1 {
		t.Fatalf("expected one splash dismissal, got %d", host.dismissed)
	}
}

func TestHostClientContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/host/context":
			w.Write([]byte(`{"user":{"id":"7","handle":"host-account"}}`))
		case "/host/ready":
			w.WriteHeader(204)
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	c := NewHostClient(srv.URL)
	account, err := c.Context(context.Background())
	if err != nil {
		t.Fatalf("context failed: %v", err)
	}
	if account == nil || account.Handle != "host-account" {
		t.Fatalf("unexpected account %+v", account)
	}
	if err := c.DismissSplash(context.Background()); err != nil {
		t.Fatalf("dismiss splash failed: %v", err)
	}
}

func TestHostClientContextNoUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	account, err := NewHostClient(srv.URL).Context(context.Background())
	if err != nil {
		t.Fatalf("context failed: %v", err)
	}
	if account != nil {
		t.Fatalf("expected no account, got %+v", account)
	}
}
