package main

import (
	"fmt"
	"os"

	"dev/bravebird/dashboard-verifier/pkg/config"
	"dev/bravebird/dashboard-verifier/pkg/verifier"
)

// suitecheck validates a suite file and prints the expanded step plan for
// every check, without touching a browser.
func main() {
	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	fmt.Printf("Suite: %d check(s), screenshots in %s/\n", len(cfg.Checks), cfg.ScreenshotDir)

	for _, check := range cfg.Checks {
		fmt.Printf("\n%s\n", check.Name)
		fmt.Printf("  target:   %s\n", check.TargetURL)
		fmt.Printf("  wait:     %q within %ds (startup delay %ds)\n",
			check.WaitSelector, check.WaitTimeoutSeconds, check.StartupDelaySeconds)
		fmt.Printf("  success:  %s\n", verifier.ScreenshotPath(check, cfg.ScreenshotDir, true))
		fmt.Printf("  error:    %s\n", verifier.ScreenshotPath(check, cfg.ScreenshotDir, false))
		if check.BaselinePath != "" {
			fmt.Printf("  baseline: %s (threshold %.4f)\n", check.BaselinePath, check.BaselineThreshold)
		}

		fmt.Println("  steps:")
		for _, step := range verifier.Steps(check) {
			fmt.Printf("    %d. %-17s [%s]\n", step.SequenceID, step.Type, step.Severity)
		}
	}
}
