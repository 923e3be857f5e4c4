package main

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
)

// startSpinner shows progress on stderr. Nothing is drawn when stderr is
// not a terminal.
func startSpinner(suffix string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriterFile(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()

	return s
}

// stopSpinner stops s; nil is allowed.
func stopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}
