// Package httpserver defines the lifecycle of the relay's HTTP server: Start
// blocks serving, Run starts it in the background and Close shuts it down.
// The serve command drives httpserver/std through these interfaces.
package httpserver

import "io"

// Provider serves until closed.
type Provider interface {
	Start() error
	io.Closer
}

type Runner interface {
	Run()
}

// RunableProvider is a Provider that can also start itself in the background.
type RunableProvider interface {
	Provider
	Runner
}
