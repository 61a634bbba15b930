package bus

import (
	"context"

	"github.com/Paintersrp/portpatrol/internal/kill"
)

// Terminator runs the termination engine. *kill.Engine satisfies it.
type Terminator interface {
	Terminate(pid int32) kill.Outcome
	RunBatch(targets []kill.Target) kill.Feedback
}

// ContainerStopper stops a container by name and reports the result.
type ContainerStopper interface {
	StopContainer(ctx context.Context, name string) kill.Feedback
}

// ServiceStopper stops a managed background service by name.
type ServiceStopper interface {
	StopService(ctx context.Context, name string) kill.Feedback
}

// Worker drains the command queue one command at a time. Termination work
// is deliberately serial so overlapping kills cannot race on the same pid.
type Worker struct {
	queue      *Queue
	bus        *Bus
	engine     Terminator
	containers ContainerStopper
	services   ServiceStopper
}

// NewWorker wires a worker to its queue and event bus. containers and
// services may be nil when the corresponding integration is disabled.
func NewWorker(queue *Queue, b *Bus, engine Terminator, containers ContainerStopper, services ServiceStopper) *Worker {
	return &Worker{queue: queue, bus: b, engine: engine, containers: containers, services: services}
}

// Run processes commands until the queue closes or the bus shuts down.
func (w *Worker) Run(ctx context.Context) {
	for {
		cmd, ok := w.queue.Pop()
		if !ok {
			return
		}
		if !w.handle(ctx, cmd) {
			return
		}
	}
}

func (w *Worker) handle(ctx context.Context, cmd Command) bool {
	switch cmd.Type {
	case CommandKillPid:
		outcome := w.engine.Terminate(cmd.Target.Pid)
		return w.bus.Publish(FeedbackEvent(kill.SingleFeedback(cmd.Target, outcome)))
	case CommandKillAll:
		return w.bus.Publish(FeedbackEvent(w.engine.RunBatch(cmd.Targets)))
	case CommandDockerStop:
		if w.containers == nil {
			return w.bus.Publish(FeedbackEvent(kill.Warningf("Docker integration is disabled.")))
		}
		return w.bus.Publish(FeedbackEvent(w.containers.StopContainer(ctx, cmd.Name)))
	case CommandServiceStop:
		if w.services == nil {
			return w.bus.Publish(FeedbackEvent(kill.Warningf("Service integration is disabled.")))
		}
		return w.bus.Publish(FeedbackEvent(w.services.StopService(ctx, cmd.Name)))
	}
	return true
}
