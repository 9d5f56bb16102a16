package models

import (
	"time"
)

// ==================== Check Types ====================

// Check describes a single verification target: the page to open, the
// element that proves it rendered, and where the screenshot artifacts go.
type Check struct {
	Name                string  `json:"name" yaml:"name"`
	TargetURL           string  `json:"target_url" yaml:"target_url"`
	StartupDelaySeconds int     `json:"startup_delay_seconds" yaml:"startup_delay_seconds"`
	WaitSelector        string  `json:"wait_selector" yaml:"wait_selector"`
	WaitTimeoutSeconds  int     `json:"wait_timeout_seconds" yaml:"wait_timeout_seconds"`
	SuccessScreenshot   string  `json:"success_screenshot" yaml:"success_screenshot"`
	ErrorScreenshot     string  `json:"error_screenshot" yaml:"error_screenshot"`
	BaselinePath        string  `json:"baseline_path,omitempty" yaml:"baseline_path"`
	BaselineThreshold   float64 `json:"baseline_threshold,omitempty" yaml:"baseline_threshold"`
	ReadinessProbe      bool    `json:"readiness_probe,omitempty" yaml:"readiness_probe"`
}

// StepType represents one stage of the verification sequence
type StepType string

const (
	StepNavigate        StepType = "navigate"         // Open the target URL
	StepWaitElement     StepType = "wait_element"     // Wait for the selector to appear
	StepCaptureTitle    StepType = "capture_title"    // Read the page title
	StepScreenshot      StepType = "screenshot"       // Capture the success screenshot
	StepCompareBaseline StepType = "compare_baseline" // Diff against the baseline image
)

// Severity represents how a step failure affects the rest of the check
type Severity string

const (
	SeverityCritical Severity = "critical" // Abort the check
	SeverityWarning  Severity = "warning"  // Record and continue
	SeverityInfo     Severity = "info"     // Best-effort only
)

// Step is a single verification stage, expanded from a Check
type Step struct {
	SequenceID int      `json:"sequence_id"`
	Type       StepType `json:"type"`
	Severity   Severity `json:"severity"`
}

// ==================== Run Types ====================

// RunStatus represents the status of a verification run
type RunStatus string

const (
	StatusPending  RunStatus = "pending"
	StatusRunning  RunStatus = "running"
	StatusSuccess  RunStatus = "success"
	StatusFailed   RunStatus = "failed"
	StatusCanceled RunStatus = "canceled"
)

// VerificationRun represents a single execution of a check
type VerificationRun struct {
	ID                 string     `json:"id" db:"id"`
	CheckName          string     `json:"check_name" db:"check_name"`
	TemporalRunID      string     `json:"temporal_run_id" db:"temporal_run_id"`
	TemporalWorkflowID string     `json:"temporal_workflow_id" db:"temporal_workflow_id"`
	Status             RunStatus  `json:"status" db:"status"`
	PageTitle          string     `json:"page_title,omitempty" db:"page_title"`
	ScreenshotPath     string     `json:"screenshot_path,omitempty" db:"screenshot_path"`
	StartedAt          *time.Time `json:"started_at" db:"started_at"`
	CompletedAt        *time.Time `json:"completed_at" db:"completed_at"`
	ErrorMessage       string     `json:"error_message,omitempty" db:"error_message"`

	// Computed fields
	StepResults []StepResult `json:"step_results,omitempty"`
}

// StepResult represents the result of executing a single step
type StepResult struct {
	ID             string     `json:"id" db:"id"`
	RunID          string     `json:"run_id" db:"run_id"`
	SequenceID     int        `json:"sequence_id" db:"sequence_id"`
	StepType       StepType   `json:"step_type" db:"step_type"`
	Status         RunStatus  `json:"status" db:"status"`
	Detail         string     `json:"detail,omitempty" db:"detail"`
	ScreenshotPath string     `json:"screenshot_path,omitempty" db:"screenshot_path"`
	ErrorMessage   string     `json:"error_message,omitempty" db:"error_message"`
	ExecutedAt     *time.Time `json:"executed_at" db:"executed_at"`
	Duration       int64      `json:"duration_ms,omitempty" db:"duration_ms"`
}

// CompareResult holds the outcome of a baseline image comparison
type CompareResult struct {
	DiffPixels  int     `json:"diff_pixels"`
	TotalPixels int     `json:"total_pixels"`
	DiffRatio   float64 `json:"diff_ratio"`
	Match       bool    `json:"match"`
}

// ==================== Workflow Types ====================

// WorkflowInput represents input for executing a verification workflow
type WorkflowInput struct {
	CheckName     string `json:"check_name"`
	RunID         string `json:"run_id"`
	Check         Check  `json:"check"`
	Headless      bool   `json:"headless"`
	Timeout       int    `json:"timeout_seconds"`
	RetryAttempts int    `json:"retry_attempts"`
}

// WorkflowResult represents the result of a verification workflow
type WorkflowResult struct {
	RunID         string       `json:"run_id"`
	Status        RunStatus    `json:"status"`
	PageTitle     string       `json:"page_title,omitempty"`
	StepResults   []StepResult `json:"step_results"`
	TotalDuration int64        `json:"total_duration_ms"`
	ErrorMessage  string       `json:"error_message,omitempty"`
}

// ==================== API Request/Response Types ====================

// ExecuteRequest represents a request to run a check
type ExecuteRequest struct {
	CheckName string `json:"check_name"`
	Headless  bool   `json:"headless"`
}

// ==================== WebSocket Message Types ====================

// WSMessage represents a WebSocket message for real-time updates
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StepStatusUpdate represents a status update for a single step
type StepStatusUpdate struct {
	RunID      string    `json:"run_id"`
	SequenceID int       `json:"sequence_id"`
	StepType   StepType  `json:"step_type"`
	Status     RunStatus `json:"status"`
	Message    string    `json:"message,omitempty"`
}
