package utils

import (
	"time"

	"github.com/briandowns/spinner"
)

// NewSpinner runs function behind a terminal spinner. The function is
// invoked exactly once; build steps are never retried.
func NewSpinner(message string, function func() error) error {

	spin := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithHiddenCursor(false))
	defer spin.Stop()
	spin.Prefix = message
	spin.FinalMSG = message + "\n"

	spin.Start()

	err := function()

	spin.Stop()

	if err != nil {
		return err
	}

	return nil
}
