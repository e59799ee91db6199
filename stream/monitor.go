package stream

import "github.com/poiesic/rgsearch/core"

// Monitor provides hooks to observe streaming sessions.
// Implementations are called from the streaming goroutine and must not block.
type Monitor interface {
	Start(session core.SessionID)
	Batch(session core.SessionID, lines int)
	Capped(session core.SessionID, total int)
	Finish(session core.SessionID, result Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ core.SessionID)            {}
func (n *noopMonitor) Batch(_ core.SessionID, _ int)     {}
func (n *noopMonitor) Capped(_ core.SessionID, _ int)    {}
func (n *noopMonitor) Finish(_ core.SessionID, _ Result) {}
