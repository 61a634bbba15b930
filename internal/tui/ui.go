package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/Paintersrp/portpatrol/internal/app"
	"github.com/Paintersrp/portpatrol/internal/bus"
	"github.com/Paintersrp/portpatrol/internal/kill"
	"github.com/Paintersrp/portpatrol/internal/ports"
)

const tableTitle = "Listeners"

// UI is the interactive listener table backed by tview. It never mutates
// application state directly; every action becomes a command on the queue
// and the state flows back through Update.
type UI struct {
	app    *tview.Application
	table  *tview.Table
	status *tview.TextView
	queue  *bus.Queue

	// OnReload triggers a manual config reload.
	OnReload func()
	// ManagedService resolves a listener to the running service-manager
	// daemon that owns it, given the currently running service names. Nil
	// disables service detection.
	ManagedService func(command string, port uint16, running map[string]struct{}) string
	// ServiceManager labels managed listeners in the table, e.g. "brew".
	ServiceManager string

	mu       sync.RWMutex
	state    app.State
	selected int32

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	stopOnce sync.Once
	done     chan struct{}
}

// New constructs the UI over the command queue.
func New(queue *bus.Queue) *UI {
	tviewApp := tview.NewApplication()
	table := tview.NewTable().SetFixed(1, 0).SetSelectable(true, false)
	table.SetBorder(true).SetTitle(tableTitle)

	status := tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	status.SetBorder(true).SetTitle("Status")

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(table, 0, 4, true).
		AddItem(status, 5, 0, false)

	ui := &UI{
		app:    tviewApp,
		table:  table,
		status: status,
		queue:  queue,
		done:   make(chan struct{}),
	}

	table.SetSelectionChangedFunc(func(row, column int) {
		ui.mu.Lock()
		defer ui.mu.Unlock()
		ui.syncSelectionLocked(row)
	})

	tviewApp.SetRoot(flex, true)
	tviewApp.SetInputCapture(ui.handleKey)

	ui.mu.Lock()
	ui.refreshTableLocked()
	ui.mu.Unlock()

	return ui
}

// Done returns a channel closed when the UI stops.
func (u *UI) Done() <-chan struct{} {
	return u.done
}

// Run starts the tview application until Stop is invoked or the context is
// cancelled.
func (u *UI) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)

	u.cancelMu.Lock()
	u.cancel = cancel
	u.cancelMu.Unlock()

	go func() {
		<-ctx.Done()
		u.Stop()
	}()

	err := u.app.Run()

	u.cancelMu.Lock()
	cancel = u.cancel
	u.cancel = nil
	u.cancelMu.Unlock()
	if cancel != nil {
		cancel()
	}
	u.Stop()

	return err
}

// Stop terminates the application loop.
func (u *UI) Stop() {
	u.stopOnce.Do(func() {
		u.cancelMu.Lock()
		cancel := u.cancel
		u.cancel = nil
		u.cancelMu.Unlock()
		if cancel != nil {
			cancel()
		}
		u.app.Stop()
		close(u.done)
	})
}

// Update feeds a fresh state clone into the UI. Safe to call from the
// reactor goroutine; rendering is queued onto the tview loop.
func (u *UI) Update(state app.State) {
	u.mu.Lock()
	u.state = state
	u.mu.Unlock()

	u.app.QueueUpdateDraw(func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		u.refreshTableLocked()
		u.renderStatusLocked()
	})
}

func (u *UI) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyUp, tcell.KeyDown:
		return event
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q', 'Q':
			go u.Stop()
			return nil
		case 'k', 'K':
			u.killSelected()
			return nil
		case 'a', 'A':
			u.killAll()
			return nil
		case 's', 'S':
			u.stopSelectedService()
			return nil
		case 'r', 'R':
			if u.OnReload != nil {
				go u.OnReload()
				u.setLocalStatus("Reloading configuration.")
			}
			return nil
		}
	}
	return event
}

func (u *UI) killSelected() {
	u.mu.RLock()
	pid := u.selected
	snap := u.state.Snapshot
	u.mu.RUnlock()

	target, ok := kill.TargetFor(pid, snap)
	if !ok {
		u.setLocalStatus("No listener selected.")
		return
	}
	u.dispatch(bus.Command{Type: bus.CommandKillPid, Target: target})
}

// killAll terminates every unmanaged listener. Container-published ports
// and service-manager daemons are skipped; killing those pids just makes
// their manager restart them.
func (u *UI) killAll() {
	u.mu.RLock()
	snap := u.state.Snapshot
	containers := u.state.Containers
	running := u.state.Services
	u.mu.RUnlock()

	var unmanaged ports.Snapshot
	for _, rec := range snap {
		if _, ok := containers[rec.Port]; ok {
			continue
		}
		if u.managedService(rec, running) != "" {
			continue
		}
		unmanaged = append(unmanaged, rec)
	}
	u.dispatch(bus.Command{Type: bus.CommandKillAll, Targets: kill.TargetsFor(unmanaged)})
}

// managedService applies the platform hook; a nil hook means no service
// manager on this platform.
func (u *UI) managedService(rec ports.Record, running map[string]struct{}) string {
	if u.ManagedService == nil {
		return ""
	}
	return u.ManagedService(rec.Command, rec.Port, running)
}

// stopSelectedService routes the selected listener to its manager: a
// container gets `docker stop`, a running service-manager daemon gets a
// service stop. Anything else falls back to a plain kill.
func (u *UI) stopSelectedService() {
	u.mu.RLock()
	pid := u.selected
	snap := u.state.Snapshot
	containers := u.state.Containers
	running := u.state.Services
	u.mu.RUnlock()

	var record *ports.Record
	for i := range snap {
		if snap[i].Pid == pid {
			record = &snap[i]
			break
		}
	}
	if record == nil {
		u.setLocalStatus("No listener selected.")
		return
	}
	if name, ok := containers[record.Port]; ok {
		u.dispatch(bus.Command{Type: bus.CommandDockerStop, Name: name})
		return
	}
	if svc := u.managedService(*record, running); svc != "" {
		u.dispatch(bus.Command{Type: bus.CommandServiceStop, Name: svc})
		return
	}
	u.killSelected()
}

func (u *UI) dispatch(cmd bus.Command) {
	if err := u.queue.Push(cmd); err != nil {
		if errors.Is(err, bus.ErrQueueClosed) {
			u.setLocalStatus("Worker unavailable; restart to recover.")
			return
		}
		u.setLocalStatus(fmt.Sprintf("Dispatch failed: %v", err))
	}
}

// setLocalStatus shows UI-only feedback that did not round-trip through the
// worker.
func (u *UI) setLocalStatus(message string) {
	u.app.QueueUpdateDraw(func() {
		u.status.SetText(message)
	})
}

func (u *UI) refreshTableLocked() {
	u.table.Clear()

	headers := []string{"PORT", "PID", "COMMAND", "MANAGED BY"}
	for col, header := range headers {
		cell := tview.NewTableCell(header).
			SetSelectable(false).
			SetAttributes(tcell.AttrBold)
		u.table.SetCell(0, col, cell)
	}

	for row, rec := range u.state.Snapshot {
		managed := "-"
		if name, ok := u.state.Containers[rec.Port]; ok {
			managed = "docker: " + name
		} else if svc := u.managedService(rec, u.state.Services); svc != "" {
			managed = u.ServiceManager + ": " + svc
		}
		values := []string{
			fmt.Sprintf("%d", rec.Port),
			fmt.Sprintf("%d", rec.Pid),
			rec.Command,
			managed,
		}
		for col, value := range values {
			cell := tview.NewTableCell(value)
			if col == 0 {
				cell = cell.SetReference(rec.Pid)
			}
			u.table.SetCell(row+1, col, cell)
		}
	}

	u.ensureSelectionLocked()
}

func (u *UI) renderStatusLocked() {
	var text string
	switch {
	case u.state.Feedback != nil:
		text = fmt.Sprintf("[%s] %s", u.state.Feedback.Severity, u.state.Feedback.Message)
	case u.state.LastError != "":
		text = "[error] scan: " + u.state.LastError
	default:
		text = fmt.Sprintf("%d listeners", len(u.state.Snapshot))
	}
	if !u.state.LastUpdate.IsZero() {
		text += fmt.Sprintf("  (updated %s ago)", u.state.Age(time.Now()).Truncate(time.Second))
	}
	u.status.SetText(text)
}

func (u *UI) ensureSelectionLocked() {
	snap := u.state.Snapshot
	if len(snap) == 0 {
		u.selected = 0
		u.table.Select(0, 0)
		return
	}

	idx := 0
	if u.selected != 0 {
		for i := range snap {
			if snap[i].Pid == u.selected {
				idx = i
				break
			}
		}
	}
	u.selected = snap[idx].Pid
	u.table.Select(idx+1, 0)
}

func (u *UI) syncSelectionLocked(row int) {
	snap := u.state.Snapshot
	if row <= 0 || row-1 >= len(snap) {
		return
	}
	u.selected = snap[row-1].Pid
}
