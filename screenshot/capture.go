// Package screenshot captures the primary display as a PNG by shelling out
// to the platform's native capture tool.
package screenshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Capturer grabs the current screen contents
type Capturer struct{}

func New() *Capturer {
	return &Capturer{}
}

// Capture takes a screenshot of the primary display and returns the PNG
// bytes. The capture tool writes to a temp file which is removed after
// reading.
func (c *Capturer) Capture(ctx context.Context) ([]byte, error) {
	dir, err := os.MkdirTemp("", "deskmate-shot-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "screen.png")

	cmd, err := captureCommand(ctx, path)
	if err != nil {
		return nil, err
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("capture tool failed: %w (%s)", err, out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot: %w", err)
	}
	return data, nil
}

// captureCommand picks the platform capture tool. On Linux it prefers
// gnome-screenshot and falls back to scrot.
func captureCommand(ctx context.Context, path string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		// -x suppresses the shutter sound
		return exec.CommandContext(ctx, "screencapture", "-x", path), nil
	case "linux":
		if _, err := exec.LookPath("gnome-screenshot"); err == nil {
			return exec.CommandContext(ctx, "gnome-screenshot", "-f", path), nil
		}
		if _, err := exec.LookPath("scrot"); err == nil {
			return exec.CommandContext(ctx, "scrot", path), nil
		}
		return nil, fmt.Errorf("no screenshot tool found (need gnome-screenshot or scrot)")
	case "windows":
		script := fmt.Sprintf(`Add-Type -AssemblyName System.Windows.Forms,System.Drawing; `+
			`$b = [System.Windows.Forms.SystemInformation]::VirtualScreen; `+
			`$bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height; `+
			`$g = [System.Drawing.Graphics]::FromImage($bmp); `+
			`$g.CopyFromScreen($b.Location, [System.Drawing.Point]::Empty, $b.Size); `+
			`$bmp.Save('%s', [System.Drawing.Imaging.ImageFormat]::Png)`, path)
		return exec.CommandContext(ctx, "powershell", "-NoProfile", "-Command", script), nil
	default:
		return nil, fmt.Errorf("screenshots not supported on %s", runtime.GOOS)
	}
}
