// Package userdata resolves the per-user data directory and guards it with
// an advisory file lock so two client processes never open the same
// inventory database concurrently (spec §6 "Persisted state").
package userdata

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

type Dir struct {
	Root    string
	lock    *flock.Flock
	locked  bool
	AgentID string
}

// Open ensures root exists, lays out the per-agent scratch subdirectory,
// and takes an exclusive advisory lock on a sentinel file inside it.
func Open(root, agentID string) (*Dir, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, err
	}
	scratch := filepath.Join(root, "agents", agentID, "scratch")
	if err := os.MkdirAll(scratch, 0700); err != nil {
		return nil, err
	}
	fl := flock.New(filepath.Join(root, ".lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, os.ErrExist
	}
	return &Dir{Root: root, lock: fl, locked: true, AgentID: agentID}, nil
}

func (d *Dir) ScratchDir() string {
	return filepath.Join(d.Root, "agents", d.AgentID, "scratch")
}

func (d *Dir) Close() error {
	if !d.locked {
		return nil
	}
	d.locked = false
	return d.lock.Unlock()
}
