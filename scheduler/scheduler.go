// Package scheduler wraps one full crawl+normalize+persist cycle with
// whole-cycle retries and plain-text run logging. It does not schedule
// itself; an external system (cron, systemd timer, CI) is expected to
// invoke the binary.
package scheduler

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"lease-scraper/utils"
)

// Cycle runs one full scrape cycle and returns a human-readable summary of
// what it produced.
type Cycle func() (summary string, err error)

// Runner executes a Cycle with a fixed-delay retry policy. Every attempt
// leaves either a success log or an error log in OutputDir, and the overall
// progress is appended to the scheduler log.
type Runner struct {
	MaxRetries int
	RetryDelay time.Duration
	OutputDir  string
	LogPath    string
	Logger     *utils.Logger
}

// Run drives the cycle until it succeeds or the retry budget is exhausted.
// The boolean result is the only contract with the caller; details live in
// the log files.
func (r *Runner) Run(cycle Cycle) bool {
	schedLog := r.openSchedulerLog()

	for attempt := 1; attempt <= r.MaxRetries; attempt++ {
		start := time.Now()
		stamp := start.Format("20060102150405")
		schedLog.Printf("Starting lease scraper run at %s", start.Format("2006-01-02 15:04:05"))

		summary, err := cycle()
		if err == nil {
			duration := time.Since(start).Seconds()
			schedLog.Printf("Scraper completed successfully in %.2f seconds", duration)

			path := filepath.Join(r.OutputDir, fmt.Sprintf("scraper_run_%s.log", stamp))
			r.writeAttemptLog(path, summary)
			schedLog.Printf("Scraper output saved to %s", path)
			return true
		}

		schedLog.Printf("Scraper failed: %v", err)
		path := filepath.Join(r.OutputDir, fmt.Sprintf("scraper_error_%s.log", stamp))
		r.writeAttemptLog(path, fmt.Sprintf("Error: %v\n\nPartial output:\n%s", err, summary))

		if attempt < r.MaxRetries {
			schedLog.Printf("Retry %d/%d scheduled after %v", attempt, r.MaxRetries, r.RetryDelay)
			time.Sleep(r.RetryDelay)
		}
	}

	schedLog.Printf("Scraper failed after %d attempts", r.MaxRetries)
	return false
}

// openSchedulerLog appends to the persistent scheduler log, falling back to
// stdout if the file cannot be opened.
func (r *Runner) openSchedulerLog() *log.Logger {
	f, err := os.OpenFile(r.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		r.Logger.Error("[scheduler] Cannot open %s: %v — logging to stdout", r.LogPath, err)
		return log.New(os.Stdout, "", log.LstdFlags)
	}
	return log.New(f, "", log.LstdFlags)
}

func (r *Runner) writeAttemptLog(path, content string) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.Logger.Error("[scheduler] Cannot create log dir for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.Logger.Error("[scheduler] Cannot write %s: %v", path, err)
	}
}
