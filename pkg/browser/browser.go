package browser

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Session owns a browser process and a single page. Close releases the
// process; callers must defer it on every path.
type Session struct {
	Browser *rod.Browser
	Page    *rod.Page
}

// Launch starts a Chrome process and opens a blank page
func Launch(headless bool) (*Session, error) {
	l := launcher.New()

	// Use CHROME_BIN if set (Docker environment)
	if chromeBin := os.Getenv("CHROME_BIN"); chromeBin != "" {
		l = l.Bin(chromeBin)
	}

	l = l.Headless(headless)

	// Additional Chrome flags for Docker compatibility
	l = l.Set("no-sandbox")
	l = l.Set("disable-gpu")
	l = l.Set("disable-dev-shm-usage")

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	return &Session{Browser: b, Page: page}, nil
}

// Close releases the browser process
func (s *Session) Close() {
	if s.Browser != nil {
		s.Browser.Close()
	}
}

// Screenshot captures the current page as a PNG at path, creating the
// parent directory if needed. Repeated captures overwrite the file.
func (s *Session) Screenshot(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot dir: %w", err)
		}
	}

	data, err := s.Page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("failed to take screenshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save screenshot: %w", err)
	}

	return nil
}
