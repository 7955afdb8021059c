// Package embedctx detects whether the session runs inside a hosting feed
// surface that already supplies an authenticated account.
package embedctx

import (
	"context"
	"sync"

	"github.com/winsznx/celo-guestbook/internal/identity"
	"go.uber.org/zap"
)

// Host is the surface embedding the app. Context returns the
// pre-authenticated account, or nil when the host supplies none.
type Host interface {
	Context(ctx context.Context) (*identity.Identity, error)
	DismissSplash(ctx context.Context) error
}

// Detector performs exactly one handshake with the host per session. A
// failed handshake is terminal: the detector reports ready with no
// account and is only re-run by remounting the whole session.
type Detector struct {
	log  *zap.Logger
	host Host

	mu      sync.Mutex
	ran     bool
	ready   bool
	account *identity.Identity

	splashOnce sync.Once
}

func NewDetector(host Host, log *zap.Logger) *Detector {
	return &Detector{log: log, host: host}
}

// Run performs the handshake. Handshake errors are logged and absorbed,
// never returned. Calling Run again is a no-op.
func (d *Detector) Run(ctx context.Context) {
	d.mu.Lock()
	if d.ran {
		d.mu.Unlock()
		return
	}
	d.ran = true
	d.mu.Unlock()

	account, err := d.host.Context(ctx)
	if err != nil {
		d.log.Warn("embedded context handshake failed", zap.Error(err))
		account = nil
	}

	d.mu.Lock()
	d.ready = true
	d.account = account
	d.mu.Unlock()

	if account != nil {
		d.dismissSplash(ctx)
	}
}

// State reports whether the handshake resolved, and the host-supplied
// account when one is present.
func (d *Detector) State() (ready bool, account *identity.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ready, d.account
}

// dismissSplash signals the host to drop its loading splash. The signal
// fires at most once; repeat calls are no-ops, not errors.
func (d *Detector) dismissSplash(ctx context.Context) {
	d.splashOnce.Do(func() {
		if err := d.host.DismissSplash(ctx); err != nil {
			d.log.Warn("dismiss splash signal failed", zap.Error(err))
		}
	})
}
