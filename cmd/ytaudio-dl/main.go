package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Process exit codes.
const (
	exitOK          = 0
	exitBatchError  = 1
	exitItemsFailed = 2
)

// exitError carries a process exit code. A nil Err means the reason was
// already reported.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func main() {
	cmd := newRootCommand()
	os.Exit(exitCode(cmd.Execute()))
}

// exitCode reports err on stderr, if it has anything to say, and maps it
// to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil && !errors.Is(ee.err, context.Canceled) {
			fmt.Fprintln(os.Stderr, ee.err)
		}
		return ee.code
	}

	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
	}
	return exitBatchError
}
