package bus

import (
	"errors"
	"sync"

	"github.com/Paintersrp/portpatrol/internal/kill"
)

// ErrQueueClosed is returned by Push after Close; callers surface it to the
// user as a feedback message rather than crashing.
var ErrQueueClosed = errors.New("command worker unavailable")

// CommandType enumerates the work the kill worker accepts.
type CommandType string

const (
	CommandKillPid     CommandType = "kill_pid"
	CommandKillAll     CommandType = "kill_all"
	CommandDockerStop  CommandType = "docker_stop"
	CommandServiceStop CommandType = "service_stop"
)

// Command is a single unit of work. Target applies to CommandKillPid,
// Targets to CommandKillAll, and Name to the container/service commands.
type Command struct {
	Type    CommandType
	Target  kill.Target
	Targets []kill.Target
	Name    string
}

// Queue is an unbounded FIFO between the UI producers and the kill worker.
// Pushes never block; the worker blocks in Pop until work arrives or the
// queue closes.
type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Command
	closed bool
}

// NewQueue constructs an open queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues a command. Returns ErrQueueClosed once Close has been
// called.
func (q *Queue) Push(cmd Command) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	q.items = append(q.items, cmd)
	q.cond.Signal()
	return nil
}

// Pop blocks until a command is available or the queue is closed and
// drained. The second return is false only in the latter case.
func (q *Queue) Pop() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Command{}, false
	}
	cmd := q.items[0]
	q.items = q.items[1:]
	return cmd, true
}

// Close rejects further pushes and wakes the worker so it can drain and
// exit.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.cond.Broadcast()
}
