package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	DEBUG = "Debug"
	INFO  = "Info"
	WARN  = "Warn"
	ERROR = "Error"
)

var (
	logWriter     *os.File
	logWriterOnce sync.Once
	logFileBase   string
	logLevelMu    sync.RWMutex
	logLevel      = INFO
)

// InitUmmLogWriter sets up the log file writer. Call once at startup.
func InitUmmLogWriter(logPath string) {
	logWriterOnce.Do(func() {
		logFileBase = logPath
		openLogFile()
	})
}

func openLogFile() {
	if logWriter != nil {
		logWriter.Close()
	}
	f, err := os.OpenFile(logFileBase, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err == nil {
		logWriter = f
	}
}

// SetLogLevel sets the minimum level that UmmLog will emit.
func SetLogLevel(level string) {
	logLevelMu.Lock()
	defer logLevelMu.Unlock()
	logLevel = level
}

// ShouldLog returns true if a message at the given level should be logged.
func ShouldLog(level string) bool {
	levels := map[string]int{DEBUG: 1, INFO: 2, WARN: 3, ERROR: 4}
	logLevelMu.RLock()
	cur := levels[logLevel]
	logLevelMu.RUnlock()
	return levels[level] >= cur
}

// UmmLog writes a timestamped log line to stdout and, when configured, to the
// rotating log file.
func UmmLog(level, component, message string, args ...interface{}) {
	if !ShouldLog(level) {
		return
	}
	msg := fmt.Sprintf(message, args...)
	now := time.Now()
	ms := now.Nanosecond() / 1e8 // tenths of a second
	logLine := fmt.Sprintf("%s.%d|%s|%s|%s\n", now.Format("2006-01-02 15:04:05"), ms, level, component, msg)
	fmt.Fprint(os.Stdout, logLine)
	if logWriter == nil {
		return
	}
	logWriter.Write([]byte(logLine))
	logWriter.Sync()
	fi, err := os.Stat(logFileBase)
	if err != nil || fi.Size() <= 1024*1024 {
		return
	}
	rotateLogFiles()
}

func rotateLogFiles() {
	logWriter.Close()
	ext := filepath.Ext(logFileBase)
	base := logFileBase[:len(logFileBase)-len(ext)]
	files, _ := filepath.Glob(fmt.Sprintf("%s-*%s", base, ext))
	type rotated struct {
		path string
		num  int
	}
	var old []rotated
	for _, f := range files {
		var n int
		fmt.Sscanf(f, base+"-%d"+ext, &n)
		if n > 0 {
			old = append(old, rotated{f, n})
		}
	}
	for i := len(old) - 1; i >= 0; i-- {
		os.Rename(old[i].path, fmt.Sprintf("%s-%d%s", base, old[i].num+1, ext))
	}
	os.Rename(logFileBase, fmt.Sprintf("%s-1%s", base, ext))
	openLogFile()
	if logWriter == nil {
		fmt.Fprintf(os.Stderr, "[UmmLog] Failed to open new log file after rotation\n")
	}
}

// CheckErrLog logs a non-nil error with context and returns it unchanged.
func CheckErrLog(level, component, context string, err error) error {
	if err != nil {
		UmmLog(level, component, "%s: %v", context, err)
	}
	return err
}
