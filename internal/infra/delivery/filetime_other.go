//go:build !darwin

package delivery

import "time"

// Creation time is not settable through the standard library outside macOS.
func setFileCreationTime(string, time.Time) error {
	return nil
}
