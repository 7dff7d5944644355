package errutil

import (
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/slimtoolkit/fstrace/pkg/version"
)

// FailOn logs the error information (terminates the application)
func FailOn(err error) {
	if err != nil {
		stackData := debug.Stack()
		log.WithError(err).WithFields(log.Fields{
			"version": version.Current(),
			"stack":   string(stackData),
		}).Fatal("fstrace: failure")
	}
}

// WarnOn logs the error information as a warning
func WarnOn(err error) {
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"version": version.Current(),
		}).Warn("fstrace: warning")
	}
}
