package verifier

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"dev/bravebird/dashboard-verifier/pkg/browser"
	"dev/bravebird/dashboard-verifier/pkg/models"
	"dev/bravebird/dashboard-verifier/pkg/visual"
)

// Verifier drives a headless browser through a single check: wait for the
// app, open the page, wait for the marker element, record the title and
// capture a screenshot. Failures produce an error-state screenshot instead.
type Verifier struct {
	check         models.Check
	screenshotDir string
	headless      bool
}

// Outcome is the result of one verification run
type Outcome struct {
	Status         models.RunStatus
	PageTitle      string
	ScreenshotPath string
	ErrorMessage   string
}

// New creates a verifier for a check
func New(check models.Check, screenshotDir string, headless bool) *Verifier {
	return &Verifier{
		check:         check,
		screenshotDir: screenshotDir,
		headless:      headless,
	}
}

// Run executes the check. It never returns an error: failures are logged,
// captured in the outcome and in the error screenshot. The browser process
// is released on every path.
func (v *Verifier) Run(ctx context.Context) Outcome {
	outcome := Outcome{Status: models.StatusFailed}

	sess, err := browser.Launch(v.headless)
	if err != nil {
		log.Printf("Error: %v", err)
		outcome.ErrorMessage = err.Error()
		return outcome
	}
	defer sess.Close()

	log.Println("Waiting for app to start...")
	if err := WaitForServer(ctx, v.check); err != nil {
		log.Printf("Error: %v", err)
		outcome.ErrorMessage = err.Error()
		return outcome
	}

	if err := v.verify(ctx, sess, &outcome); err != nil {
		log.Printf("Error: %v", err)
		outcome.ErrorMessage = err.Error()

		// Error-state screenshot, best effort
		errPath := ScreenshotPath(v.check, v.screenshotDir, false)
		if shotErr := sess.Screenshot(errPath); shotErr == nil {
			outcome.ScreenshotPath = errPath
		}
		return outcome
	}

	outcome.Status = models.StatusSuccess
	return outcome
}

func (v *Verifier) verify(ctx context.Context, sess *browser.Session, outcome *Outcome) error {
	for _, step := range Steps(v.check) {
		switch step.Type {
		case models.StepNavigate:
			log.Printf("Navigating to %s", v.check.TargetURL)
		case models.StepWaitElement:
			log.Printf("Waiting for selector %q...", v.check.WaitSelector)
		}

		detail, err := ExecuteStep(ctx, sess, v.check, step, v.screenshotDir)
		if err != nil {
			return err
		}

		switch step.Type {
		case models.StepCaptureTitle:
			outcome.PageTitle = detail
			log.Printf("Page title: %s", detail)
		case models.StepScreenshot:
			outcome.ScreenshotPath = detail
			log.Printf("Screenshot saved to %s", detail)
		case models.StepCompareBaseline:
			log.Printf("Baseline comparison: %s", detail)
		}
	}
	return nil
}

// Steps expands a check into its ordered step sequence
func Steps(check models.Check) []models.Step {
	steps := []models.Step{
		{SequenceID: 1, Type: models.StepNavigate, Severity: models.SeverityCritical},
		{SequenceID: 2, Type: models.StepWaitElement, Severity: models.SeverityCritical},
		{SequenceID: 3, Type: models.StepCaptureTitle, Severity: models.SeverityWarning},
		{SequenceID: 4, Type: models.StepScreenshot, Severity: models.SeverityCritical},
	}
	if check.BaselinePath != "" {
		steps = append(steps, models.Step{
			SequenceID: 5,
			Type:       models.StepCompareBaseline,
			Severity:   models.SeverityWarning,
		})
	}
	return steps
}

// ShouldContinue reports whether a check proceeds after the step failed.
// Only critical steps abort; the one-shot runner ignores this and treats
// every failure as terminal.
func ShouldContinue(step models.Step) bool {
	return step.Severity != models.SeverityCritical
}

// ExecuteStep runs a single step against a live session and returns a
// human-readable detail string (title, path, diff ratio)
func ExecuteStep(ctx context.Context, sess *browser.Session, check models.Check, step models.Step, screenshotDir string) (string, error) {
	switch step.Type {
	case models.StepNavigate:
		page := sess.Page.Context(ctx)
		if err := page.Navigate(check.TargetURL); err != nil {
			return "", fmt.Errorf("navigation failed: %w", err)
		}
		if err := page.WaitLoad(); err != nil {
			return "", fmt.Errorf("page load failed: %w", err)
		}
		return check.TargetURL, nil

	case models.StepWaitElement:
		wait := time.Duration(check.WaitTimeoutSeconds) * time.Second
		if _, err := sess.Page.Context(ctx).Timeout(wait).Element(check.WaitSelector); err != nil {
			return "", fmt.Errorf("element %q did not appear within %s: %w", check.WaitSelector, wait, err)
		}
		return check.WaitSelector, nil

	case models.StepCaptureTitle:
		info, err := sess.Page.Context(ctx).Info()
		if err != nil {
			return "", fmt.Errorf("failed to read page info: %w", err)
		}
		return info.Title, nil

	case models.StepScreenshot:
		path := ScreenshotPath(check, screenshotDir, true)
		if err := sess.Screenshot(path); err != nil {
			return "", err
		}
		return path, nil

	case models.StepCompareBaseline:
		captured := ScreenshotPath(check, screenshotDir, true)
		res, err := visual.CompareFiles(check.BaselinePath, captured, check.BaselineThreshold)
		if err != nil {
			return "", err
		}
		detail := fmt.Sprintf("diff ratio %.4f (%d/%d pixels)", res.DiffRatio, res.DiffPixels, res.TotalPixels)
		if !res.Match {
			return detail, fmt.Errorf("baseline mismatch: %s", detail)
		}
		return detail, nil

	default:
		return "", fmt.Errorf("unsupported step type: %s", step.Type)
	}
}

// ScreenshotPath returns the artifact path for a run outcome
func ScreenshotPath(check models.Check, dir string, success bool) string {
	name := check.ErrorScreenshot
	if success {
		name = check.SuccessScreenshot
	}
	return filepath.Join(dir, name)
}

// WaitForServer blocks for the check's startup delay. With the readiness
// probe enabled the delay becomes a budget: polling stops as soon as the
// target answers an HTTP request.
func WaitForServer(ctx context.Context, check models.Check) error {
	delay := time.Duration(check.StartupDelaySeconds) * time.Second

	if !check.ReadinessProbe {
		time.Sleep(delay)
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(delay)

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, check.TargetURL, nil)
		if err != nil {
			return fmt.Errorf("invalid target URL: %w", err)
		}

		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("server not reachable within %s: %w", delay, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}
