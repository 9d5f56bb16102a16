package activities

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"dev/bravebird/dashboard-verifier/pkg/browser"
	"dev/bravebird/dashboard-verifier/pkg/models"
	"dev/bravebird/dashboard-verifier/pkg/temporal/workflows"
	"dev/bravebird/dashboard-verifier/pkg/verifier"
)

// SessionPool manages live browser sessions across activity invocations
type SessionPool struct {
	sessions map[string]*browser.Session
	mu       sync.RWMutex
}

var sessionPool = &SessionPool{
	sessions: make(map[string]*browser.Session),
}

// Activities holds activity implementations
type Activities struct {
	ScreenshotDir string
}

// NewActivities creates new activities
func NewActivities(screenshotDir string) *Activities {
	return &Activities{
		ScreenshotDir: screenshotDir,
	}
}

// InitializeBrowserActivity launches a browser session
func (a *Activities) InitializeBrowserActivity(ctx context.Context, input workflows.BrowserInitInput) (workflows.VerifySession, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Initializing browser session", "headless", input.Headless)

	sess, err := browser.Launch(input.Headless)
	if err != nil {
		return workflows.VerifySession{}, err
	}

	sessionID := uuid.New().String()
	sessionPool.mu.Lock()
	sessionPool.sessions[sessionID] = sess
	sessionPool.mu.Unlock()

	logger.Info("Browser session created", "sessionID", sessionID)

	return workflows.VerifySession{SessionID: sessionID}, nil
}

// CloseBrowserActivity closes a browser session
func (a *Activities) CloseBrowserActivity(ctx context.Context, sessionID string) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Closing browser session", "sessionID", sessionID)

	sessionPool.mu.Lock()
	defer sessionPool.mu.Unlock()

	sess, ok := sessionPool.sessions[sessionID]
	if !ok {
		return nil // Already closed
	}

	sess.Close()
	delete(sessionPool.sessions, sessionID)
	return nil
}

// WaitForServerActivity waits out the application's startup latency
func (a *Activities) WaitForServerActivity(ctx context.Context, input workflows.WaitInput) error {
	logger := activity.GetLogger(ctx)
	logger.Info("Waiting for application", "target", input.Check.TargetURL,
		"delaySeconds", input.Check.StartupDelaySeconds, "probe", input.Check.ReadinessProbe)

	activity.RecordHeartbeat(ctx, "waiting for application")
	return verifier.WaitForServer(ctx, input.Check)
}

// ExecuteStepActivity executes a single verification step
func (a *Activities) ExecuteStepActivity(ctx context.Context, input workflows.StepInput) (models.StepResult, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Executing step", "type", input.Step.Type, "sequence", input.Step.SequenceID)

	now := time.Now()
	result := models.StepResult{
		ID:         uuid.New().String(),
		SequenceID: input.Step.SequenceID,
		StepType:   input.Step.Type,
		Status:     models.StatusRunning,
		ExecutedAt: &now,
	}

	sessionPool.mu.RLock()
	sess, ok := sessionPool.sessions[input.SessionID]
	sessionPool.mu.RUnlock()

	if !ok {
		return result, fmt.Errorf("browser session not found: %s", input.SessionID)
	}

	detail, err := verifier.ExecuteStep(ctx, sess, input.Check, input.Step, a.ScreenshotDir)
	result.Detail = detail
	result.Duration = time.Since(now).Milliseconds()

	if err != nil {
		result.ErrorMessage = err.Error()
		return result, err
	}

	result.Status = models.StatusSuccess
	if input.Step.Type == models.StepScreenshot {
		result.ScreenshotPath = detail
	}

	activity.RecordHeartbeat(ctx, fmt.Sprintf("Completed step %d", input.Step.SequenceID))

	return result, nil
}

// TakeScreenshotActivity captures the current page state of a session
func (a *Activities) TakeScreenshotActivity(ctx context.Context, input workflows.ScreenshotInput) (string, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Taking screenshot", "sessionID", input.SessionID, "filename", input.Filename)

	sessionPool.mu.RLock()
	sess, ok := sessionPool.sessions[input.SessionID]
	sessionPool.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("browser session not found")
	}

	path := filepath.Join(a.ScreenshotDir, input.Filename)
	if err := sess.Screenshot(path); err != nil {
		return "", err
	}

	return path, nil
}
