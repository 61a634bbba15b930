package notify

import (
	"fmt"
	"log"
	"strings"
)

const appName = "portpatrol"

// Notifier raises desktop notifications when dev ports appear or free up.
// Delivery is fire and forget; a missing notification daemon never affects
// monitoring.
type Notifier struct {
	enabled bool
	send    func(title, body string) error
}

// New creates the platform notifier. When enabled is false every call is a
// no-op.
func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled, send: platformSend}
}

// PortsChanged reports appeared and freed ports in one notification. The
// call returns immediately; delivery runs in a background goroutine.
func (n *Notifier) PortsChanged(added, freed []uint16) {
	if !n.enabled || (len(added) == 0 && len(freed) == 0) {
		return
	}
	body := changeBody(added, freed)
	go func() {
		if err := n.send(appName, body); err != nil {
			log.Printf("WARNING: desktop notification failed: %v", err)
		}
	}()
}

func changeBody(added, freed []uint16) string {
	var parts []string
	if len(added) > 0 {
		parts = append(parts, fmt.Sprintf("New listeners on %s", joinPorts(added)))
	}
	if len(freed) > 0 {
		parts = append(parts, fmt.Sprintf("Freed %s", joinPorts(freed)))
	}
	return strings.Join(parts, ". ")
}

func joinPorts(ports []uint16) string {
	label := "port"
	if len(ports) > 1 {
		label = "ports"
	}
	strs := make([]string, len(ports))
	for i, p := range ports {
		strs[i] = fmt.Sprintf("%d", p)
	}
	return label + " " + strings.Join(strs, ", ")
}
