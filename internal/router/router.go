// Package router selects the active storage backend for each call. It is a
// thin selector: given the current mode and, in server mode, a bearer
// credential, it returns the matching store.RecordStore. Business logic never
// branches on the mode itself.
package router

import (
	"github.com/RyRy79261/intake-tracker-sub000/internal/auth"
	"github.com/RyRy79261/intake-tracker-sub000/internal/common"
	"github.com/RyRy79261/intake-tracker-sub000/internal/store"
	"github.com/RyRy79261/intake-tracker-sub000/internal/store/postgres"
)

// Mode names the currently selected backend.
type Mode string

const (
	ModeLocal  Mode = "local"
	ModeServer Mode = "server"
)

// Config is the per-call routing input. It is passed explicitly rather than
// read from ambient state so call sites are testable with a fixed value.
type Config struct {
	Mode Mode
	// Credential is the bearer token required in server mode.
	Credential string
}

// Router dispatches calls to the local store or to a per-user view of the
// remote store. It holds no mutable state and is safe for concurrent use.
type Router struct {
	local     store.RecordStore
	remote    *postgres.Store
	secretKey []byte
}

func New(local store.RecordStore, remote *postgres.Store, secretKey []byte) *Router {
	return &Router{local: local, remote: remote, secretKey: secretKey}
}

// Resolve returns the backend matching cfg. In server mode a missing
// credential fails closed with common.ErrAuthRequired: falling back to the
// local store would silently relocate data.
func (r *Router) Resolve(cfg Config) (store.RecordStore, error) {
	switch cfg.Mode {
	case ModeLocal, "":
		return r.local, nil
	case ModeServer:
		if cfg.Credential == "" {
			return nil, common.ErrAuthRequired
		}
		if r.remote == nil {
			return nil, common.ErrAuthRequired
		}
		userID, err := auth.UserIDFromToken(cfg.Credential, r.secretKey)
		if err != nil {
			return nil, err
		}
		return r.remote.ForUser(userID), nil
	default:
		return nil, common.ErrAuthRequired
	}
}

// Local returns the local backend directly, bypassing mode selection. The
// migration engine uses this to address a specific side of a move.
func (r *Router) Local() store.RecordStore {
	return r.local
}

// Remote resolves the remote backend for the given credential regardless of
// the current mode. Used by the migration engine.
func (r *Router) Remote(credential string) (store.RecordStore, error) {
	return r.Resolve(Config{Mode: ModeServer, Credential: credential})
}
