// Package logging provides categorized file-based logging for the persona
// pipeline. Logs are written under <dir>/logs/ with one file per category.
// Logging is debug-gated: when debug mode is off, every call is a no-op.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot     Category = "boot"     // startup, population load
	CategoryStore    Category = "store"    // population repository
	CategoryGoal     Category = "goal"     // goal interpretation
	CategoryAudience Category = "audience" // audience filtering
	CategoryFeatures Category = "features" // feature engineering
	CategoryCluster  Category = "cluster"  // clustering, k-scan
	CategoryPersona  Category = "persona"  // persona labeling
	CategoryStrategy Category = "strategy" // strategy generation
	CategoryLLM      Category = "llm"      // collaborator calls
	CategoryPipeline Category = "pipeline" // end-to-end runs
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	debugMode bool
	logLevel  = LevelInfo
)

// Initialize sets up the logging directory. When debug is false the package
// stays a silent no-op and no directory is created.
func Initialize(dir string, debug bool, level string) error {
	debugMode = debug
	logLevel = parseLevel(level)
	if !debugMode {
		return nil
	}
	if dir == "" {
		return fmt.Errorf("log directory required")
	}
	logsDir = filepath.Join(dir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	Boot("=== personagen logging initialized ===")
	Boot("logs directory: %s level: %s", logsDir, level)
	return nil
}

func parseLevel(level string) int {
	switch level {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// IsDebugMode returns whether debug logging is enabled.
func IsDebugMode() bool {
	return debugMode
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger when debug mode is disabled.
func Get(category Category) *Logger {
	if !debugMode || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date-prefixed files for easy rotation.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// =============================================================================
// CONVENIENCE FUNCTIONS - Quick logging without getting a logger first.
// These are no-ops when debug mode is disabled.
// =============================================================================

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// Store logs to the store category.
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// Goal logs to the goal category.
func Goal(format string, args ...interface{}) { Get(CategoryGoal).Info(format, args...) }

// GoalDebug logs debug to the goal category.
func GoalDebug(format string, args ...interface{}) { Get(CategoryGoal).Debug(format, args...) }

// Audience logs to the audience category.
func Audience(format string, args ...interface{}) { Get(CategoryAudience).Info(format, args...) }

// AudienceDebug logs debug to the audience category.
func AudienceDebug(format string, args ...interface{}) { Get(CategoryAudience).Debug(format, args...) }

// Features logs to the features category.
func Features(format string, args ...interface{}) { Get(CategoryFeatures).Info(format, args...) }

// Cluster logs to the cluster category.
func Cluster(format string, args ...interface{}) { Get(CategoryCluster).Info(format, args...) }

// ClusterDebug logs debug to the cluster category.
func ClusterDebug(format string, args ...interface{}) { Get(CategoryCluster).Debug(format, args...) }

// Persona logs to the persona category.
func Persona(format string, args ...interface{}) { Get(CategoryPersona).Info(format, args...) }

// PersonaWarn logs warning to the persona category.
func PersonaWarn(format string, args ...interface{}) { Get(CategoryPersona).Warn(format, args...) }

// Strategy logs to the strategy category.
func Strategy(format string, args ...interface{}) { Get(CategoryStrategy).Info(format, args...) }

// LLM logs to the llm category.
func LLM(format string, args ...interface{}) { Get(CategoryLLM).Info(format, args...) }

// LLMWarn logs warning to the llm category.
func LLMWarn(format string, args ...interface{}) { Get(CategoryLLM).Warn(format, args...) }

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation.
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration at debug level.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithInfo ends the timer and logs at info level. An optional detail
// string is appended to the log line.
func (t *Timer) StopWithInfo(detail ...string) time.Duration {
	elapsed := time.Since(t.start)
	if len(detail) > 0 {
		Get(t.category).Info("%s completed in %v (%s)", t.op, elapsed, strings.Join(detail, ", "))
	} else {
		Get(t.category).Info("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
