package tracer

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
)

var signals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	syscall.SIGHUP,
}

// startSystemSignalsMonitor calls cancel on the first stop signal.
// The returned func stops watching.
func startSystemSignalsMonitor(cancel func()) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, signals...)
	log.Debugf("fstrace: listening for signals - %+v", signals)

	doneCh := make(chan struct{})
	go func() {
		select {
		case sig := <-sigChan:
			log.Debugf("fstrace: stopping on signal (%v)...", sig)
			cancel()
		case <-doneCh:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(doneCh)
	}
}
