package verifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"dev/bravebird/dashboard-verifier/pkg/models"
)

func TestSteps(t *testing.T) {
	tests := []struct {
		name      string
		check     models.Check
		wantTypes []models.StepType
	}{
		{
			name:  "Plain check",
			check: models.Check{Name: "dashboard"},
			wantTypes: []models.StepType{
				models.StepNavigate,
				models.StepWaitElement,
				models.StepCaptureTitle,
				models.StepScreenshot,
			},
		},
		{
			name:  "Check with baseline",
			check: models.Check{Name: "dashboard", BaselinePath: "baselines/dashboard.png"},
			wantTypes: []models.StepType{
				models.StepNavigate,
				models.StepWaitElement,
				models.StepCaptureTitle,
				models.StepScreenshot,
				models.StepCompareBaseline,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := Steps(tt.check)

			if len(steps) != len(tt.wantTypes) {
				t.Fatalf("Steps() count = %d, want %d", len(steps), len(tt.wantTypes))
			}
			for i, step := range steps {
				if step.Type != tt.wantTypes[i] {
					t.Errorf("step %d type = %s, want %s", i, step.Type, tt.wantTypes[i])
				}
				if step.SequenceID != i+1 {
					t.Errorf("step %d sequence = %d, want %d", i, step.SequenceID, i+1)
				}
			}
		})
	}
}

func TestShouldContinue(t *testing.T) {
	tests := []struct {
		name string
		step models.Step
		want bool
	}{
		{
			name: "Critical step aborts",
			step: models.Step{Type: models.StepNavigate, Severity: models.SeverityCritical},
			want: false,
		},
		{
			name: "Warning step continues",
			step: models.Step{Type: models.StepCaptureTitle, Severity: models.SeverityWarning},
			want: true,
		},
		{
			name: "Info step continues",
			step: models.Step{Type: models.StepCompareBaseline, Severity: models.SeverityInfo},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldContinue(tt.step); got != tt.want {
				t.Errorf("ShouldContinue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScreenshotPath(t *testing.T) {
	check := models.Check{
		SuccessScreenshot: "dashboard.png",
		ErrorScreenshot:   "error.png",
	}

	if got := ScreenshotPath(check, "verification", true); got != filepath.Join("verification", "dashboard.png") {
		t.Errorf("success path = %q", got)
	}
	if got := ScreenshotPath(check, "verification", false); got != filepath.Join("verification", "error.png") {
		t.Errorf("error path = %q", got)
	}

	// Same outcome always maps to the same file, so reruns overwrite
	if ScreenshotPath(check, "verification", true) != ScreenshotPath(check, "verification", true) {
		t.Error("success path not stable across calls")
	}
}

func TestWaitForServerFixedDelay(t *testing.T) {
	check := models.Check{StartupDelaySeconds: 0, ReadinessProbe: false}

	if err := WaitForServer(context.Background(), check); err != nil {
		t.Errorf("WaitForServer() error = %v, want nil", err)
	}
}

func TestWaitForServerProbeReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<h1>ok</h1>"))
	}))
	defer srv.Close()

	check := models.Check{
		TargetURL:           srv.URL,
		StartupDelaySeconds: 5,
		ReadinessProbe:      true,
	}

	start := time.Now()
	if err := WaitForServer(context.Background(), check); err != nil {
		t.Fatalf("WaitForServer() error = %v", err)
	}

	// A reachable server must not burn the whole startup budget
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("WaitForServer() took %s against a live server", elapsed)
	}
}

func TestWaitForServerProbeUnreachable(t *testing.T) {
	// Reserve a port, then close it so connections are refused
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	check := models.Check{
		TargetURL:           url,
		StartupDelaySeconds: 1,
		ReadinessProbe:      true,
	}

	if err := WaitForServer(context.Background(), check); err == nil {
		t.Error("WaitForServer() against closed port expected error, got nil")
	}
}

func TestExecuteStepUnsupportedType(t *testing.T) {
	_, err := ExecuteStep(context.Background(), nil, models.Check{}, models.Step{Type: "reboot"}, "verification")
	if err == nil {
		t.Error("ExecuteStep() with unknown type expected error, got nil")
	}
}
