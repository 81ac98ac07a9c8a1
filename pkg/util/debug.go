package util

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// DebugLevel controls the verbosity of debug output.
type DebugLevel int

const (
	DebugOff      DebugLevel = 0 // No debug output
	DebugSummary  DebugLevel = 1 // Stage-level timing summaries
	DebugDetailed DebugLevel = 2 // Per-file detail
)

// Global logging state
var (
	globalDebugLevel  DebugLevel = DebugOff
	globalDebugWriter io.Writer  = os.Stderr
	globalColor                  = !color.NoColor
	globalDebugMu     sync.RWMutex
)

// SetDebugLevel sets the global debug level.
func SetDebugLevel(level DebugLevel) {
	globalDebugMu.Lock()
	defer globalDebugMu.Unlock()
	if level < DebugOff {
		level = DebugOff
	}
	if level > DebugDetailed {
		level = DebugDetailed
	}
	globalDebugLevel = level
}

// GetDebugLevel returns the current global debug level.
func GetDebugLevel() DebugLevel {
	globalDebugMu.RLock()
	defer globalDebugMu.RUnlock()
	return globalDebugLevel
}

// SetDebugWriter sets the output writer for debug and warning messages.
// Color is only used when w is the process's stderr or stdout.
func SetDebugWriter(w io.Writer) {
	globalDebugMu.Lock()
	defer globalDebugMu.Unlock()
	globalDebugWriter = w
	globalColor = (w == os.Stderr || w == os.Stdout) && !color.NoColor
}

// GetDebugWriter returns the current debug output writer.
func GetDebugWriter() io.Writer {
	globalDebugMu.RLock()
	defer globalDebugMu.RUnlock()
	return globalDebugWriter
}

// Debugf prints a debug message if the current level >= minLevel.
func Debugf(minLevel DebugLevel, format string, args ...interface{}) {
	globalDebugMu.RLock()
	level := globalDebugLevel
	writer := globalDebugWriter
	globalDebugMu.RUnlock()

	if level >= minLevel {
		_, _ = fmt.Fprintf(writer, "[DEBUG] "+format+"\n", args...)
	}
}

var warnPrefix = color.New(color.FgYellow, color.Bold)

// Warnf prints a warning regardless of debug level. Used for recoverable
// problems such as a file that vanished between walk and read.
func Warnf(format string, args ...interface{}) {
	globalDebugMu.RLock()
	writer := globalDebugWriter
	useColor := globalColor
	globalDebugMu.RUnlock()

	prefix := "warning:"
	if useColor {
		prefix = warnPrefix.Sprint(prefix)
	}
	_, _ = fmt.Fprintf(writer, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// Timer measures the duration of an operation.
type Timer struct {
	name  string
	start time.Time
}

// NewTimer creates and starts a new timer.
func NewTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// StopAndLog stops the timer and logs at the specified level.
func (t *Timer) StopAndLog(minLevel DebugLevel) time.Duration {
	elapsed := t.Stop()
	Debugf(minLevel, "%s: %v", t.name, elapsed)
	return elapsed
}

// TimingStats collects per-stage timing for one run (walk, search, render).
type TimingStats struct {
	mu     sync.Mutex
	level  DebugLevel
	writer io.Writer
	stages map[string]*stageStats
	order  []string // Preserve insertion order for stages
}

type stageStats struct {
	total time.Duration
	count int64
}

// NewTimingStats creates a new timing stats collector.
func NewTimingStats(level DebugLevel) *TimingStats {
	return &TimingStats{
		level:  level,
		writer: GetDebugWriter(),
		stages: make(map[string]*stageStats),
	}
}

// RecordStage adds d to the named stage; count is the number of items the
// stage handled (files walked, files searched).
func (s *TimingStats) RecordStage(name string, d time.Duration, count int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, exists := s.stages[name]
	if !exists {
		stats = &stageStats{}
		s.stages[name] = stats
		s.order = append(s.order, name)
	}
	stats.total += d
	stats.count += count
}

// Summary returns a formatted summary of all stages.
func (s *TimingStats) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.stages) == 0 {
		return ""
	}

	var totalTime time.Duration
	for _, stats := range s.stages {
		totalTime += stats.total
	}

	var b strings.Builder
	b.WriteString("Stages:\n")
	for _, name := range s.order {
		stats := s.stages[name]
		pct := 0.0
		if totalTime > 0 {
			pct = float64(stats.total) / float64(totalTime) * 100
		}
		fmt.Fprintf(&b, "  %-8s %10v (%d items, %.0f%%)\n",
			name+":", stats.total.Round(time.Microsecond), stats.count, pct)
	}
	fmt.Fprintf(&b, "  %-8s %10v\n", "total:", totalTime.Round(time.Microsecond))
	return b.String()
}

// PrintSummary prints the timing summary when the level allows it.
func (s *TimingStats) PrintSummary() {
	if s.level < DebugSummary {
		return
	}
	if summary := s.Summary(); summary != "" {
		_, _ = fmt.Fprint(s.writer, "[DEBUG] "+summary)
	}
}

// Start creates a timer that records into the named stage when stopped.
// Usage: timer := stats.Start("walk"); defer timer.Stop()
func (s *TimingStats) Start(name string) *StatsTimer {
	return &StatsTimer{
		stats: s,
		name:  name,
		start: time.Now(),
	}
}

// StatsTimer is a timer that records to TimingStats when stopped.
type StatsTimer struct {
	stats *TimingStats
	name  string
	start time.Time
	count int64
}

// WithCount sets the number of items handled by the stage.
func (t *StatsTimer) WithCount(count int64) *StatsTimer {
	t.count = count
	return t
}

// Stop stops the timer and records the duration.
func (t *StatsTimer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	t.stats.RecordStage(t.name, elapsed, t.count)
	return elapsed
}
