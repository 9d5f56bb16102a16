package main

import (
	"log"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"dev/bravebird/dashboard-verifier/pkg/temporal/activities"
	"dev/bravebird/dashboard-verifier/pkg/temporal/workflows"
)

const TaskQueue = "dashboard-verification"

func main() {
	// Get Temporal host from environment
	temporalHost := os.Getenv("TEMPORAL_HOST")
	if temporalHost == "" {
		temporalHost = "localhost:7233"
	}

	// Create Temporal client
	c, err := client.Dial(client.Options{
		HostPort: temporalHost,
	})
	if err != nil {
		log.Fatalf("Failed to create Temporal client: %v", err)
	}
	defer c.Close()

	// Screenshot directory
	screenshotDir := getEnvOrDefault("SCREENSHOT_DIR", "verification")

	// Create activities
	acts := activities.NewActivities(screenshotDir)

	// Create worker
	w := worker.New(c, TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     5,
		MaxConcurrentWorkflowTaskExecutionSize: 10,
	})

	// Register workflows
	w.RegisterWorkflow(workflows.VerificationWorkflow)
	w.RegisterWorkflow(workflows.SuiteVerificationWorkflow)

	// Register activities
	w.RegisterActivity(acts.InitializeBrowserActivity)
	w.RegisterActivity(acts.CloseBrowserActivity)
	w.RegisterActivity(acts.WaitForServerActivity)
	w.RegisterActivity(acts.ExecuteStepActivity)
	w.RegisterActivity(acts.TakeScreenshotActivity)

	log.Printf("Starting Temporal worker on task queue: %s", TaskQueue)
	log.Printf("Temporal host: %s", temporalHost)
	log.Printf("Screenshot directory: %s", screenshotDir)

	// Start worker
	err = w.Run(worker.InterruptCh())
	if err != nil {
		log.Fatalf("Worker failed: %v", err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
