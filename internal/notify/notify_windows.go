//go:build windows

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

// toastScript raises a toast through the Windows Runtime. Driving it from
// PowerShell works without an app manifest or packaging identity.
const toastScript = `$ErrorActionPreference = 'SilentlyContinue'
[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
$xml.LoadXml('<toast><visual><binding template="ToastGeneric"><text>%s</text><text>%s</text></binding></visual></toast>')
$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('portpatrol').Show($toast)`

// platformSend delivers a toast via a hidden PowerShell process.
func platformSend(title, body string) error {
	script := fmt.Sprintf(toastScript, escapeToastText(title), escapeToastText(body))
	cmd := exec.Command("powershell",
		"-NoProfile", "-NonInteractive", "-WindowStyle", "Hidden",
		"-Command", script)
	return cmd.Run()
}

// escapeToastText escapes for both the XML payload and the single-quoted
// PowerShell string wrapping it.
func escapeToastText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	s = strings.ReplaceAll(s, "'", "''")
	return s
}
