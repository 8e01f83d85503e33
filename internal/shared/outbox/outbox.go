// Package outbox holds the shared contract for transactional outbox rows:
// events persisted inside the same store transaction as the state change
// they describe, relayed to the bus by a worker.
package outbox

const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// Message is one persisted outbox row as the relay sees it.
type Message struct {
	ID        string
	EventType string
	Payload   []byte
	Status    string
}
