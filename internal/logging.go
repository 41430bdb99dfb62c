package internal

import (
	"log"
	"os"
)

// InitLogging routes the stdlib logger to stdout with microsecond
// timestamps; the runner logs per-validator durations and the extra
// resolution matters there.
func InitLogging() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
