package install

import (
	"errors"
	"fmt"
)

var (
	// ErrInstallFailed is returned when the installer reported an error, the
	// install timed out, or metadata could no longer be refreshed.
	ErrInstallFailed = errors.New("installation failed")

	// ErrDeletedBeforeReady is returned when the server was deleted while
	// installation was still pending.
	ErrDeletedBeforeReady = errors.New("server deleted before installation completed")

	// ErrRefreshFailed marks an install failure caused by a failed metadata refresh.
	ErrRefreshFailed = errors.New("metadata refresh failed")

	// ErrTimeout marks an install failure caused by the install deadline.
	ErrTimeout = errors.New("installation timed out")
)

// InstallerError carries the message the installer published.
type InstallerError struct {
	Message string
}

func (e *InstallerError) Error() string {
	return fmt.Sprintf("installer reported error: %s", e.Message)
}

func installerFailure(message string) error {
	return fmt.Errorf("%w: %w", ErrInstallFailed, &InstallerError{Message: message})
}

func refreshFailure(err error) error {
	return fmt.Errorf("%w: %w: %w", ErrInstallFailed, ErrRefreshFailed, err)
}

func creationFailure(err error) error {
	return fmt.Errorf("%w: instance creation failed: %w", ErrInstallFailed, err)
}

// IsInstallFailed reports whether err is an installation failure.
func IsInstallFailed(err error) bool {
	return errors.Is(err, ErrInstallFailed)
}

// IsDeleted reports whether err means the server was deleted before it was ready.
func IsDeleted(err error) bool {
	return errors.Is(err, ErrDeletedBeforeReady)
}
