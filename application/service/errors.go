package service

import "errors"

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("corvus: client is closed")

// ErrHandlerPanicked indicates a task handler panicked during execution.
// Worker.executeWithRecovery wraps the recovered value with this sentinel so
// callers (tests, retry policies) can distinguish a panic from an ordinary
// handler error via errors.Is, without string-matching the panic message.
var ErrHandlerPanicked = errors.New("task handler panicked")
