package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"dev/bravebird/dashboard-verifier/pkg/models"
	"dev/bravebird/dashboard-verifier/pkg/verifier"
)

// VerificationWorkflow executes a single check: browser launch, startup
// wait, then the check's step sequence. The browser session is closed on
// every path via a deferred activity.
func VerificationWorkflow(ctx workflow.Context, input models.WorkflowInput) (models.WorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting verification workflow", "check", input.CheckName, "runID", input.RunID)

	result := models.WorkflowResult{
		RunID:       input.RunID,
		Status:      models.StatusRunning,
		StepResults: make([]models.StepResult, 0),
	}

	// Register query handler for real-time progress
	err := workflow.SetQueryHandler(ctx, "getProgress", func() (models.WorkflowResult, error) {
		return result, nil
	})
	if err != nil {
		logger.Error("Failed to register query handler", "error", err)
	}

	startTime := workflow.Now(ctx)

	timeout := input.Timeout
	if timeout == 0 {
		timeout = 300
	}
	retries := input.RetryAttempts
	if retries == 0 {
		retries = 1
	}

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Duration(timeout) * time.Second,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        int32(retries),
			NonRetryableErrorTypes: []string{"FatalBrowserError"},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	// Launch the browser session
	var session VerifySession
	err = workflow.ExecuteActivity(ctx, "InitializeBrowserActivity", BrowserInitInput{
		Headless: input.Headless,
	}).Get(ctx, &session)
	if err != nil {
		result.Status = models.StatusFailed
		result.ErrorMessage = "Failed to initialize browser: " + err.Error()
		return result, nil
	}

	defer func() {
		// Cleanup browser session
		_ = workflow.ExecuteActivity(ctx, "CloseBrowserActivity", session.SessionID).Get(ctx, nil)
	}()

	// Wait for the application under test
	err = workflow.ExecuteActivity(ctx, "WaitForServerActivity", WaitInput{
		Check: input.Check,
	}).Get(ctx, nil)
	if err != nil {
		result.Status = models.StatusFailed
		result.ErrorMessage = "Application not ready: " + err.Error()
		return result, nil
	}

	// Execute each step sequentially
	for _, step := range verifier.Steps(input.Check) {
		logger.Info("Executing step", "sequence", step.SequenceID, "type", step.Type)

		var stepResult models.StepResult
		err := workflow.ExecuteActivity(ctx, "ExecuteStepActivity", StepInput{
			SessionID: session.SessionID,
			Check:     input.Check,
			Step:      step,
		}).Get(ctx, &stepResult)

		stepResult.SequenceID = step.SequenceID
		stepResult.StepType = step.Type

		if err != nil {
			stepResult.Status = models.StatusFailed
			stepResult.ErrorMessage = err.Error()

			// Capture the error state before deciding whether to abort
			var screenshotPath string
			_ = workflow.ExecuteActivity(ctx, "TakeScreenshotActivity", ScreenshotInput{
				SessionID: session.SessionID,
				Filename:  input.Check.ErrorScreenshot,
			}).Get(ctx, &screenshotPath)
			stepResult.ScreenshotPath = screenshotPath

			result.StepResults = append(result.StepResults, stepResult)

			if !verifier.ShouldContinue(step) {
				result.Status = models.StatusFailed
				result.ErrorMessage = "Step " + string(step.Type) + " failed: " + err.Error()
				break
			}
		} else {
			stepResult.Status = models.StatusSuccess
			result.StepResults = append(result.StepResults, stepResult)

			if step.Type == models.StepCaptureTitle {
				result.PageTitle = stepResult.Detail
			}
		}
	}

	result.TotalDuration = workflow.Now(ctx).Sub(startTime).Milliseconds()

	// Set final status
	if result.Status != models.StatusFailed {
		allSuccess := true
		for _, sr := range result.StepResults {
			if sr.Status != models.StatusSuccess {
				allSuccess = false
				break
			}
		}
		if allSuccess {
			result.Status = models.StatusSuccess
		} else {
			result.Status = models.StatusFailed
		}
	}

	logger.Info("Verification completed", "check", input.CheckName, "status", result.Status, "duration", result.TotalDuration)
	return result, nil
}

// VerifySession holds browser session information
type VerifySession struct {
	SessionID string `json:"session_id"`
}

// BrowserInitInput is the input for browser initialization
type BrowserInitInput struct {
	Headless bool `json:"headless"`
}

// WaitInput is the input for the startup wait activity
type WaitInput struct {
	Check models.Check `json:"check"`
}

// StepInput is the input for executing a verification step
type StepInput struct {
	SessionID string       `json:"session_id"`
	Check     models.Check `json:"check"`
	Step      models.Step  `json:"step"`
}

// ScreenshotInput is the input for taking a screenshot
type ScreenshotInput struct {
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
}

// SuiteInput represents input for running a whole check suite
type SuiteInput struct {
	SuiteID  string         `json:"suite_id"`
	Checks   []models.Check `json:"checks"`
	Headless bool           `json:"headless"`
}

// SuiteResult represents the result of a suite execution
type SuiteResult struct {
	Results []models.WorkflowResult `json:"results"`
}

// SuiteVerificationWorkflow executes every check of a suite in parallel
// as child workflows
func SuiteVerificationWorkflow(ctx workflow.Context, input SuiteInput) (SuiteResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting suite verification", "suiteID", input.SuiteID, "checkCount", len(input.Checks))

	result := SuiteResult{
		Results: make([]models.WorkflowResult, len(input.Checks)),
	}

	selector := workflow.NewSelector(ctx)
	futures := make([]workflow.ChildWorkflowFuture, len(input.Checks))

	for i, check := range input.Checks {
		childOptions := workflow.ChildWorkflowOptions{
			WorkflowID: input.SuiteID + "-" + check.Name,
		}
		childCtx := workflow.WithChildOptions(ctx, childOptions)

		childInput := models.WorkflowInput{
			CheckName:     check.Name,
			RunID:         input.SuiteID + "-" + check.Name,
			Check:         check,
			Headless:      input.Headless,
			Timeout:       300,
			RetryAttempts: 1,
		}

		future := workflow.ExecuteChildWorkflow(childCtx, VerificationWorkflow, childInput)
		futures[i] = future

		idx := i
		name := check.Name
		selector.AddFuture(future, func(f workflow.Future) {
			var childResult models.WorkflowResult
			if err := f.Get(ctx, &childResult); err != nil {
				childResult = models.WorkflowResult{
					RunID:        input.SuiteID + "-" + name,
					Status:       models.StatusFailed,
					ErrorMessage: err.Error(),
				}
			}
			result.Results[idx] = childResult
		})
	}

	// Wait for all child workflows to complete
	for range input.Checks {
		selector.Select(ctx)
	}

	logger.Info("Suite verification completed", "totalChecks", len(input.Checks))
	return result, nil
}
