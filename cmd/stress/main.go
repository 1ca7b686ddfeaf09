package main

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lixenwraith/tlog"
)

const (
	totalBursts    = 100
	callsPerBurst  = 500
	maxMessageSize = 2000
	numWorkers     = 8
)

const configFile = "stress_config.toml"

// Every worker opens its own context on the same file; flock keeps
// rotations coordinated between them
var tomlContent = `
# Example stress_config.toml
[tlog]
  kind = "file"
  path = "./logs/stress.log"
  max_size_kb = 1024 # Force frequent rotation (1MB)
  max_backups = 5
  flock = true
  buffer_size = 16384
  sanitize = "txt"
  internal_errors_to_stderr = true
`

var levels = []tlog.Level{
	tlog.LevelDebug,
	tlog.LevelInfo,
	tlog.LevelWarning,
	tlog.LevelError,
}

// messages are registered by every worker in the same order
var messages = []struct {
	name     string
	level    tlog.Level
	throttle float64
}{
	{"stress.chatty", tlog.LevelDebug, 0},
	{"stress.sampled", tlog.LevelInfo, 0.01},
	{"stress.rare", tlog.LevelWarning, 0.5},
}

func generateRandomMessage(rng *rand.Rand, size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 \t\n"
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rng.Intn(len(chars))])
	}
	return sb.String()
}

// logBurst simulates a burst of logging activity on one worker's context
func logBurst(c *tlog.Context, ids []tlog.MessageID, rng *rand.Rand, burstID int) {
	for i := 0; i < callsPerBurst; i++ {
		level := levels[rng.Intn(len(levels))]
		id := ids[rng.Intn(len(ids))]
		msg := generateRandomMessage(rng, rng.Intn(maxMessageSize)+10)

		switch i % 10 {
		case 0:
			_ = c.Start(level, id, "bst=%d seq=%d", burstID, i).
				Values(" rnd", rng.Int63()).
				Stop(" %s", msg)
		case 1:
			_ = c.MaybeContext(level, id, fmt.Sprintf("bst=%d ", burstID), "seq=%d %s", i, msg)
		default:
			_ = c.Maybe(level, id, "bst=%d seq=%d %s", burstID, i, msg)
		}
	}
}

// worker owns one context for its whole life
func worker(cfg *tlog.Config, burstChan chan int, wg *sync.WaitGroup, completedBursts *atomic.Int64, totals *tlog.Stats, mu *sync.Mutex) {
	defer wg.Done()

	h, err := tlog.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "worker open failed: %v\n", err)
		return
	}
	ids := make([]tlog.MessageID, 0, len(messages))
	for _, m := range messages {
		id, err := tlog.RegisterMessage(h, m.level, m.level, m.name, m.throttle)
		if err != nil {
			fmt.Fprintf(os.Stderr, "register failed: %v\n", err)
			_ = tlog.Close(h)
			return
		}
		ids = append(ids, id)
	}
	c, err := tlog.Get(h)
	if err != nil {
		fmt.Fprintf(os.Stderr, "worker get failed: %v\n", err)
		return
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for burstID := range burstChan {
		logBurst(c, ids, rng, burstID)
		completed := completedBursts.Add(1)
		if completed%10 == 0 || completed == totalBursts {
			fmt.Printf("\rProgress: %d/%d bursts completed", completed, totalBursts)
		}
	}

	if err := tlog.Close(h); err != nil {
		fmt.Fprintf(os.Stderr, "worker close error: %v\n", err)
	}

	s := c.Stats()
	mu.Lock()
	totals.LinesEmitted += s.LinesEmitted
	totals.LinesSuppressed += s.LinesSuppressed
	totals.FormatErrors += s.FormatErrors
	totals.BytesWritten += s.BytesWritten
	totals.Flushes += s.Flushes
	totals.Rotations += s.Rotations
	totals.IOErrors += s.IOErrors
	mu.Unlock()
}

func main() {
	fmt.Println("--- tlog Stress Test ---")

	// --- Setup Config ---
	if err := os.WriteFile(configFile, []byte(tomlContent), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dummy config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created dummy config file: %s\n", configFile)

	cfg, err := tlog.NewConfigFromFile(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if len(os.Args) > 1 {
		if err := cfg.ApplyOverride(os.Args[1:]...); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid override: %v\n", err)
			os.Exit(1)
		}
	}

	logsDir := filepath.Dir(cfg.Path)
	_ = os.RemoveAll(logsDir) // Clean previous run's logs before starting
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", logsDir, err)
		os.Exit(1)
	}

	fmt.Printf("Starting stress test: %d workers, %d bursts, %d calls/burst.\n",
		numWorkers, totalBursts, callsPerBurst)
	fmt.Printf("Logs will be written to: %s (backups up to %d)\n", cfg.Path, cfg.MaxBackups)
	fmt.Println("Press Ctrl+C to stop early.")

	// --- Setup Workers and Signal Handling ---
	burstChan := make(chan int, numWorkers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var totals tlog.Stats
	completedBursts := atomic.Int64{}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	stopChan := make(chan struct{})

	go func() {
		<-sigChan
		fmt.Println("\n[Signal Received] Stopping burst generation...")
		close(stopChan)
	}()

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(cfg, burstChan, &wg, &completedBursts, &totals, &mu)
	}

	// --- Run Test ---
	startTime := time.Now()
	for i := 1; i <= totalBursts; i++ {
		select {
		case burstChan <- i:
		case <-stopChan:
			fmt.Println("[Signal Received] Halting burst submission.")
			goto endLoop
		}
	}
endLoop:
	close(burstChan)

	fmt.Println("\nWaiting for workers to finish...")
	wg.Wait()
	duration := time.Since(startTime)
	finalCompleted := completedBursts.Load()

	fmt.Printf("\n--- Test Finished ---")
	fmt.Printf("\nCompleted %d/%d bursts in %v\n", finalCompleted, totalBursts, duration.Round(time.Millisecond))
	if finalCompleted > 0 && duration.Seconds() > 0 {
		callsPerSec := float64(finalCompleted*callsPerBurst) / duration.Seconds()
		fmt.Printf("Approximate calls/sec: %.2f\n", callsPerSec)
	}
	fmt.Printf("Emitted %d, suppressed %d, format errors %d\n",
		totals.LinesEmitted, totals.LinesSuppressed, totals.FormatErrors)
	fmt.Printf("Wrote %d bytes in %d flushes, %d rotations, %d I/O errors\n",
		totals.BytesWritten, totals.Flushes, totals.Rotations, totals.IOErrors)

	fmt.Printf("Check log files in '%s' and the config '%s'.\n", logsDir, configFile)
}
