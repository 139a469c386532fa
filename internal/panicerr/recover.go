package panicerr

// Recover runs f in a new goroutine wrapped in defer logic to recover
// any abnormal exits or panics as non-nil error returns. name
// identifies the caller in the resulting error, e.g. one of a Stenura
// client's "reader", "retrier" or "poller" loops.
func Recover(name string, f func() error) error {
	errch := make(chan error, 1)
	go func() {
		defer close(errch)
		defer recoverExitError(name, errch)
		defer recoverPanicError(name, errch)
		errch <- f()
	}()
	return <-errch
}
