package server

import "sync"

// Notification is one queued host alert.
type Notification struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// collectingNotifier queues operation outcomes until the frontend drains
// them, standing in for the host's toast channel.
type collectingNotifier struct {
	mu      sync.Mutex
	pending []Notification
}

func newCollectingNotifier() *collectingNotifier {
	return &collectingNotifier{}
}

func (n *collectingNotifier) Success(msg string) { n.push("success", msg) }
func (n *collectingNotifier) Failure(msg string) { n.push("error", msg) }

func (n *collectingNotifier) push(severity, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = append(n.pending, Notification{Severity: severity, Message: msg})
}

// Drain returns the queued notifications and clears the queue.
func (n *collectingNotifier) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.pending
	n.pending = nil
	return out
}
