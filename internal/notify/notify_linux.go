//go:build linux

package notify

import "os/exec"

// platformSend delivers a desktop notification via notify-send.
func platformSend(title, body string) error {
	cmd := exec.Command("notify-send", "--urgency", "normal", "--app-name", appName, title, body)
	return cmd.Run()
}
