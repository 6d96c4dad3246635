package logger

import (
	"fmt"
	"log"
	"os"
)

// Init sets up the global logger to write to the specified file path.
// An empty path keeps logging on stderr and returns a nil file.
// Otherwise the caller is responsible for closing the returned file.
func Init(logFilePath string) (*os.File, error) {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	if logFilePath == "" {
		log.SetOutput(os.Stderr)
		return nil, nil
	}

	logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.SetOutput(logFile)
	return logFile, nil
}
