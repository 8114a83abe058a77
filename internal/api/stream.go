package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// EvaluationEvent describes websocket payloads emitted during batch runs.
// Type is one of started, decision, progress, cancelled, error or complete.
type EvaluationEvent struct {
	Type      string       `json:"type"`
	JobID     string       `json:"job_id"`
	BatchID   uint         `json:"batch_id"`
	Total     int64        `json:"total,omitempty"`
	Processed int          `json:"processed,omitempty"`
	Decision  *DecisionDTO `json:"decision,omitempty"`
	Message   string       `json:"message,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// subscriber serialises writes to one websocket connection.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (sub *subscriber) send(event EvaluationEvent) error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return sub.conn.WriteJSON(event)
}

func (sub *subscriber) ping() error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// EvaluationNotifier fans batch progress out to websocket subscribers. The
// most recent event is kept so late subscribers and the status endpoint see
// where the job stands.
type EvaluationNotifier struct {
	mu     sync.RWMutex
	subs   map[*subscriber]struct{}
	latest *EvaluationEvent
}

func NewEvaluationNotifier() *EvaluationNotifier {
	return &EvaluationNotifier{subs: make(map[*subscriber]struct{})}
}

// Subscribe attaches conn and replays the latest event to it.
func (n *EvaluationNotifier) Subscribe(conn *websocket.Conn) *subscriber {
	sub := &subscriber{conn: conn}
	n.mu.Lock()
	n.subs[sub] = struct{}{}
	latest := n.latest
	n.mu.Unlock()

	if latest != nil {
		if err := sub.send(*latest); err != nil {
			n.Unsubscribe(sub)
		}
	}
	return sub
}

// Unsubscribe detaches sub and closes its connection. Safe to call twice.
func (n *EvaluationNotifier) Unsubscribe(sub *subscriber) {
	if sub == nil {
		return
	}
	n.mu.Lock()
	_, ok := n.subs[sub]
	delete(n.subs, sub)
	n.mu.Unlock()
	if ok {
		_ = sub.conn.Close()
	}
}

// Broadcast stamps event, records it as the latest status and delivers it.
// Subscribers whose write fails are dropped.
func (n *EvaluationNotifier) Broadcast(event EvaluationEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	latest := event
	n.latest = &latest
	targets := make([]*subscriber, 0, len(n.subs))
	for sub := range n.subs {
		targets = append(targets, sub)
	}
	n.mu.Unlock()

	for _, sub := range targets {
		if err := sub.send(event); err != nil {
			logrus.WithError(err).WithField("remote", sub.conn.RemoteAddr().String()).Debug("drop evaluation subscriber")
			n.Unsubscribe(sub)
		}
	}
}

// KeepAlive pings sub until a ping fails or done is closed.
func (n *EvaluationNotifier) KeepAlive(sub *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sub.ping(); err != nil {
				n.Unsubscribe(sub)
				return
			}
		}
	}
}

// LastStatus returns a copy of the most recent event, or nil.
func (n *EvaluationNotifier) LastStatus() *EvaluationEvent {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.latest == nil {
		return nil
	}
	status := *n.latest
	return &status
}

// Subscribers is the number of attached connections.
func (n *EvaluationNotifier) Subscribers() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
