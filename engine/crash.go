package engine

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"
)

var (
	crashMu      sync.Mutex
	crashCleanup []func()
)

// OnCrash registers cleanup run before a crash report, such as restoring the terminal
func OnCrash(fn func()) {
	crashMu.Lock()
	crashCleanup = append(crashCleanup, fn)
	crashMu.Unlock()
}

// HandleCrash runs the registered cleanup, prints the panic and stack, and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}
	crashMu.Lock()
	cleanup := crashCleanup
	crashMu.Unlock()
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}

	os.Stdout.Sync()
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Stderr.Sync()
	os.Exit(1)
}

// Go runs fn on a new goroutine with crash handling
// Use it instead of the go keyword wherever a panic would leave the terminal raw
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}

// Guard wraps fn for errgroup-style callers, with the same crash handling as Go
func Guard(fn func() error) func() error {
	return func() error {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		return fn()
	}
}
