package avatar

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the mailbox-owned table of per-avatar skeletons (spec §4.7:
// "the mailbox maintains a per-avatar global skeleton"). Mutation happens
// from the single session-reader goroutine in the common case, but the
// outfit-download tasks described in spec §5 ("Shared resources") may
// also read/write concurrently while baking, so access is guarded by a
// mutex held only for the duration of one lookup-or-create.
type Registry struct {
	mu        sync.Mutex
	skeletons map[uuid.UUID]*Skeleton
}

func NewRegistry() *Registry {
	return &Registry{skeletons: make(map[uuid.UUID]*Skeleton)}
}

// Get returns the skeleton for an avatar, creating a fresh copy of the
// default skeleton on first sight.
func (r *Registry) Get(agentID uuid.UUID) *Skeleton {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.skeletons[agentID]
	if !ok {
		s = DefaultSkeleton()
		r.skeletons[agentID] = s
	}
	return s
}

// Forget drops an avatar's skeleton, e.g. once it leaves the region.
func (r *Registry) Forget(agentID uuid.UUID) {
	r.mu.Lock()
	delete(r.skeletons, agentID)
	r.mu.Unlock()
}

// ApplyItem is the registry-level entry point for spec §4.7's worn-item
// contribution: look up (or create) the avatar's skeleton, then apply the
// item's inverse-bind matrix to every joint it names.
func (r *Registry) ApplyItem(agentID uuid.UUID, ibmByJoint map[JointName]Mat4) {
	sk := r.Get(agentID)
	for joint, ibm := range ibmByJoint {
		if _, ok := sk.Joints[joint]; !ok {
			continue
		}
		sk.ApplyItemTransform(joint, ibm)
	}
}
