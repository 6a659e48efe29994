package oneshot

import "sync"

// pairLock serializes every endpoint transition in the process: linking,
// send, poll, and teardown of all pairs run inside it. Critical sections are
// O(1) and never block; wakers fire inside the critical section, which is
// safe because Waker.Fire is non-blocking by contract.
//
// One coarse lock covers the union of all pair link graphs. On targets with
// interrupt-context senders the equivalent primitive is an interrupt-
// disabling spinlock; a plain mutex preserves the semantics here.
var pairLock sync.Mutex

// noCopy flags endpoint types for go vet's copylocks check. Endpoints must
// not be copied once linked: the peer holds a pointer to the original.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
