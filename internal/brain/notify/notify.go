// Package notify holds operator notifications raised by alert commands.
package notify

import "strings"

// Priority orders notifications for display.
type Priority string

const (
	Normal   Priority = "normal"
	Critical Priority = "critical"
)

// MaxPending bounds the queue; the oldest notification is dropped first.
const MaxPending = 32

// Notification is one queued message.
type Notification struct {
	Source   string
	Message  string
	Priority Priority
}

// Queue is a FIFO of pending notifications.
type Queue struct {
	pending []Notification
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// PriorityOf classifies a message: anything mentioning "critical" is Critical.
func PriorityOf(message string) Priority {
	if strings.Contains(strings.ToLower(message), "critical") {
		return Critical
	}
	return Normal
}

// Push appends a notification, dropping the oldest when the queue is full.
func (q *Queue) Push(source, message string, priority Priority) {
	q.pending = append(q.pending, Notification{Source: source, Message: message, Priority: priority})
	if over := len(q.pending) - MaxPending; over > 0 {
		q.pending = append([]Notification(nil), q.pending[over:]...)
	}
}

// Next removes and returns the oldest notification.
func (q *Queue) Next() (Notification, bool) {
	if len(q.pending) == 0 {
		return Notification{}, false
	}
	n := q.pending[0]
	q.pending = q.pending[1:]
	return n, true
}

// Pending returns a copy of the queue, oldest first.
func (q *Queue) Pending() []Notification {
	return append([]Notification(nil), q.pending...)
}

// Len returns the number of pending notifications.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Clear drops every pending notification and returns how many there were.
func (q *Queue) Clear() int {
	n := len(q.pending)
	q.pending = nil
	return n
}
