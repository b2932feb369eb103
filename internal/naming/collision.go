package naming

import (
	"fmt"
	"sync"
)

// CollisionResolver tracks artifact sets claimed by input files and
// resolves duplicates by appending " - dupN" to the base name. All methods
// are goroutine-safe.
type CollisionResolver struct {
	mu       sync.Mutex
	owners   map[string]string // artifact key → input path that owns it
	counters map[string]int    // requested key → next dup counter
}

// NewCollisionResolver creates a ready-to-use resolver.
func NewCollisionResolver() *CollisionResolver {
	return &CollisionResolver{
		owners:   make(map[string]string),
		counters: make(map[string]int),
	}
}

// Resolve returns the final artifacts for input. If requested is unclaimed
// (or already owned by input) it is returned as-is. Otherwise a " - dupN"
// variant is generated.
func (cr *CollisionResolver) Resolve(input string, requested Artifacts) Artifacts {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	key := requested.Key()
	owner, exists := cr.owners[key]
	if !exists || owner == input {
		cr.owners[key] = input
		return requested
	}

	counter := cr.counters[key]
	if counter == 0 {
		counter = 1
	}

	for {
		candidate := Artifacts{Dir: requested.Dir, Base: fmt.Sprintf("%s - dup%d", requested.Base, counter)}
		cOwner, cExists := cr.owners[candidate.Key()]
		if !cExists || cOwner == input {
			cr.counters[key] = counter + 1
			cr.owners[candidate.Key()] = input
			return candidate
		}
		counter++
	}
}
