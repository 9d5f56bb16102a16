package main

import (
	"context"
	"log"
	"os"

	"dev/bravebird/dashboard-verifier/pkg/config"
	"dev/bravebird/dashboard-verifier/pkg/verifier"
)

// One-shot dashboard verification: launch a headless browser, wait for the
// app, open the page, wait for the marker element and capture a screenshot.
// The exit code reflects process completion, not the verification outcome;
// operators judge success from the console output and the screenshot files.
func main() {
	cfg, err := config.Load(os.Getenv("VERIFIER_CONFIG"))
	if err != nil {
		log.Printf("Error: %v", err)
		return
	}

	check := cfg.Checks[0]
	if name := os.Getenv("VERIFIER_CHECK"); name != "" {
		if c := cfg.FindCheck(name); c != nil {
			check = *c
		} else {
			log.Printf("Check %q not configured, running %q", name, check.Name)
		}
	}

	v := verifier.New(check, cfg.ScreenshotDir, cfg.Headless)
	v.Run(context.Background())
}
