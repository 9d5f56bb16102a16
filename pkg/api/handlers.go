package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.temporal.io/sdk/client"

	"dev/bravebird/dashboard-verifier/pkg/config"
	"dev/bravebird/dashboard-verifier/pkg/database"
	"dev/bravebird/dashboard-verifier/pkg/models"
)

const TaskQueue = "dashboard-verification"

// Handlers contains API handlers
type Handlers struct {
	db             *database.DB
	temporalClient client.Client
	cfg            *config.Config
	upgrader       websocket.Upgrader
}

// NewHandlers creates new API handlers
func NewHandlers(db *database.DB, temporalClient client.Client, cfg *config.Config) *Handlers {
	return &Handlers{
		db:             db,
		temporalClient: temporalClient,
		cfg:            cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ==================== Check Handlers ====================

// ListChecks lists the configured checks
func (h *Handlers) ListChecks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.cfg.Checks)
}

// GetCheck retrieves a configured check by name
func (h *Handlers) GetCheck(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]

	check := h.cfg.FindCheck(name)
	if check == nil {
		http.Error(w, "Check not found", http.StatusNotFound)
		return
	}

	respondJSON(w, check)
}

// ==================== Run Handlers ====================

// RunCheck starts a verification run for a check
func (h *Handlers) RunCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	name := vars["name"]

	check := h.cfg.FindCheck(name)
	if check == nil {
		http.Error(w, "Check not found", http.StatusNotFound)
		return
	}

	req := models.ExecuteRequest{Headless: h.cfg.Headless}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // Empty body keeps defaults
	}

	runID := uuid.New().String()
	now := time.Now()

	run := &models.VerificationRun{
		ID:        runID,
		CheckName: name,
		Status:    models.StatusPending,
		StartedAt: &now,
	}

	if h.db != nil {
		if err := h.db.CreateVerificationRun(ctx, run); err != nil {
			http.Error(w, "Failed to create run: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	input := models.WorkflowInput{
		CheckName:     name,
		RunID:         runID,
		Check:         *check,
		Headless:      req.Headless,
		Timeout:       300,
		RetryAttempts: 1,
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("dashboard-verification-%s", runID),
		TaskQueue: TaskQueue,
	}

	we, err := h.temporalClient.ExecuteWorkflow(ctx, workflowOptions, "VerificationWorkflow", input)
	if err != nil {
		if h.db != nil {
			h.db.UpdateVerificationRunStatus(ctx, runID, models.StatusFailed, err.Error())
		}
		http.Error(w, "Failed to start verification: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if h.db != nil {
		h.db.UpdateVerificationRunTemporal(ctx, runID, we.GetID(), we.GetRunID())
		h.db.UpdateVerificationRunStatus(ctx, runID, models.StatusRunning, "")
	}

	respondJSON(w, map[string]interface{}{
		"run_id":               runID,
		"temporal_workflow_id": we.GetID(),
		"temporal_run_id":      we.GetRunID(),
		"status":               "running",
	})
}

// ListRuns lists verification runs
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checkName := r.URL.Query().Get("check")

	if h.db == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	runs, err := h.db.ListVerificationRuns(ctx, checkName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respondJSON(w, runs)
}

// GetRun retrieves a verification run
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	if h.db == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	run, err := h.db.GetVerificationRun(ctx, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if run == nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	results, _ := h.db.GetStepResults(ctx, id)
	run.StepResults = results

	respondJSON(w, run)
}

// CancelRun cancels a running verification
func (h *Handlers) CancelRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	vars := mux.Vars(r)
	id := vars["id"]

	if h.db == nil {
		http.Error(w, "Database not available", http.StatusServiceUnavailable)
		return
	}

	run, err := h.db.GetVerificationRun(ctx, id)
	if err != nil || run == nil {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}

	if run.TemporalWorkflowID != "" {
		err = h.temporalClient.CancelWorkflow(ctx, run.TemporalWorkflowID, run.TemporalRunID)
		if err != nil {
			http.Error(w, "Failed to cancel verification: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	h.db.UpdateVerificationRunStatus(ctx, id, models.StatusCanceled, "Cancelled by user")

	respondJSON(w, map[string]string{"status": "canceled"})
}

// StreamRunUpdates streams run updates via WebSocket
func (h *Handlers) StreamRunUpdates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID := vars["id"]

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx := r.Context()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastStatus := ""
	lastStepCount := 0

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var status models.RunStatus
			var stepResults []models.StepResult
			var pageTitle, errorMessage string
			fromWorkflow := false

			// Query the live workflow first for real-time progress
			if h.temporalClient != nil {
				queryResp, err := h.temporalClient.QueryWorkflow(ctx, fmt.Sprintf("dashboard-verification-%s", runID), "", "getProgress")
				if err == nil {
					var result models.WorkflowResult
					if queryResp.Get(&result) == nil {
						status = result.Status
						stepResults = result.StepResults
						pageTitle = result.PageTitle
						errorMessage = result.ErrorMessage
						fromWorkflow = true
					}
				}
			}

			// Fall back to DB if the workflow query didn't work
			if status == "" && h.db != nil {
				run, err := h.db.GetVerificationRun(ctx, runID)
				if err != nil || run == nil {
					continue
				}
				status = run.Status
				results, _ := h.db.GetStepResults(ctx, runID)
				stepResults = results
			}

			if string(status) != lastStatus || len(stepResults) != lastStepCount {
				msg := models.WSMessage{
					Type: "run_update",
					Payload: map[string]interface{}{
						"run_id":       runID,
						"status":       status,
						"step_results": stepResults,
					},
				}
				conn.WriteJSON(msg)

				lastStatus = string(status)
				lastStepCount = len(stepResults)

				if status == models.StatusSuccess || status == models.StatusFailed || status == models.StatusCanceled {
					// Persist the final state before closing the stream
					if h.db != nil && fromWorkflow {
						h.db.UpdateVerificationRunStatus(ctx, runID, status, errorMessage)
						for _, sr := range stepResults {
							if sr.StepType == models.StepScreenshot && sr.ScreenshotPath != "" {
								h.db.UpdateVerificationRunResult(ctx, runID, pageTitle, sr.ScreenshotPath)
							}
						}
						h.db.CreateStepResults(ctx, runID, stepResults)
					}
					return
				}
			}
		}
	}
}

// ==================== Screenshot Handlers ====================

// ServeScreenshot serves a screenshot file
func (h *Handlers) ServeScreenshot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	filename := vars["filename"]

	// Security: Only allow files from the screenshots directory
	filePath := filepath.Join(h.cfg.ScreenshotDir, filepath.Base(filename))

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.Error(w, "Screenshot not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, filePath)
}

// ==================== Helpers ====================

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
