//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

// platformSend delivers a notification via osascript.
func platformSend(title, body string) error {
	script := fmt.Sprintf(
		`display notification "%s" with title "%s"`,
		escapeAppleScript(body), escapeAppleScript(title),
	)
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// escapeAppleScript escapes characters that would break out of an
// AppleScript string literal.
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}
