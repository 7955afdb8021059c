// Package identity reconciles the three overlapping authentication
// signals (embedded host account, persisted session, interactive sign-in)
// into one authoritative social identity.
package identity

import (
	"fmt"
	"strconv"
)

// Identity is the normalized social identity. At most one identity is
// current at a time; consumers read snapshots and never mutate them.
type Identity struct {
	ID                string   `json:"id"`
	Handle            string   `json:"handle"`
	DisplayName       string   `json:"display_name,omitempty"`
	AvatarURL         string   `json:"avatar_url,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	CustodyAddress    string   `json:"custody_address,omitempty"`
	VerifiedAddresses []string `json:"verified_addresses,omitempty"`
}

func (id *Identity) clone() *Identity {
	if id == nil {
		return nil
	}
	cp := *id
	if id.VerifiedAddresses != nil {
		cp.VerifiedAddresses = append([]string(nil), id.VerifiedAddresses...)
	}
	return &cp
}

// Profile is the raw payload delivered by the interactive sign-in flow.
type Profile struct {
	FID               uint64   `json:"fid"`
	Username          string   `json:"username"`
	DisplayName       string   `json:"display_name"`
	AvatarURL         string   `json:"avatar_url"`
	Bio               string   `json:"bio"`
	CustodyAddress    string   `json:"custody_address"`
	VerifiedAddresses []string `json:"verified_addresses"`
}

// Normalize maps a raw sign-in profile onto the identity shape shared by
// all three sources.
func Normalize(p Profile) *Identity {
	return &Identity{
		ID:                strconv.FormatUint(p.FID, 10),
		Handle:            p.Username,
		DisplayName:       p.DisplayName,
		AvatarURL:         p.AvatarURL,
		Bio:               p.Bio,
		CustodyAddress:    p.CustodyAddress,
		VerifiedAddresses: append([]string(nil), p.VerifiedAddresses...),
	}
}

// Store persists the single identity record. Load returns (nil, nil) when
// nothing is stored and *PersistenceError when the stored record cannot be
// deserialized. Save is all-or-nothing: a failed write leaves any previous
// record untouched.
type Store interface {
	Load() (*Identity, error)
	Save(id *Identity) error
	Clear() error
}

// PersistenceError reports a corrupt or unwritable stored identity.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("identity %s: %v", e.Op, e.Err)
}
func (e *PersistenceError) Unwrap() error { return e.Err }
