package engine

import (
	"os"
	"sync"
	"syscall"
	"time"
)

// ProcessInfo is a read-only view of a registered process.
type ProcessInfo struct {
	PID       int       `json:"pid"`
	Command   string    `json:"command"`
	StartedAt time.Time `json:"started_at"`
}

type registryEntry struct {
	proc      *os.Process
	command   string
	startedAt time.Time
}

// Registry tracks every currently running spawned process by pid. A pid is
// registered immediately after a successful spawn and removed on confirmed
// termination; no pid appears twice. All mutations are serialized with a
// mutex.
type Registry struct {
	mu      sync.Mutex
	entries map[int]*registryEntry
	order   []int
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[int]*registryEntry),
	}
}

// Register adds a live process under its pid.
func (r *Registry) Register(pid int, command string, proc *os.Process) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[pid]; !exists {
		r.order = append(r.order, pid)
	}
	r.entries[pid] = &registryEntry{
		proc:      proc,
		command:   command,
		startedAt: time.Now(),
	}
}

// Unregister removes a pid and reports whether it was present.
func (r *Registry) Unregister(pid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remove(pid)
}

// Get returns the process handle for a pid, if registered.
func (r *Registry) Get(pid int) (*os.Process, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[pid]
	if !ok {
		return nil, false
	}
	return entry.proc, true
}

// PIDs returns the registered pids in insertion order.
func (r *Registry) PIDs() []int {
	r.mu.Lock()
	defer r.mu.Unlock()

	pids := make([]int, len(r.order))
	copy(pids, r.order)
	return pids
}

// List returns a snapshot of all registered processes in insertion order.
func (r *Registry) List() []ProcessInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	infos := make([]ProcessInfo, 0, len(r.order))
	for _, pid := range r.order {
		entry := r.entries[pid]
		infos = append(infos, ProcessInfo{
			PID:       pid,
			Command:   entry.command,
			StartedAt: entry.startedAt,
		})
	}
	return infos
}

// Count returns the number of registered processes.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// TerminateOne sends SIGTERM to a registered process and removes its
// entry. It reports whether an entry existed; termination itself is
// asynchronous and a missing pid is not an error.
func (r *Registry) TerminateOne(pid int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[pid]
	if !ok {
		return false
	}
	_ = entry.proc.Signal(syscall.SIGTERM)
	r.remove(pid)
	return true
}

// TerminateAll requests graceful termination of every registered process
// and returns how many were signaled.
func (r *Registry) TerminateAll() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, pid := range append([]int(nil), r.order...) {
		entry := r.entries[pid]
		_ = entry.proc.Signal(syscall.SIGTERM)
		r.remove(pid)
		count++
	}
	return count
}

// remove deletes a pid from both the map and the order slice. Caller must
// hold the mutex.
func (r *Registry) remove(pid int) bool {
	if _, ok := r.entries[pid]; !ok {
		return false
	}
	delete(r.entries, pid)
	for i, p := range r.order {
		if p == pid {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}
