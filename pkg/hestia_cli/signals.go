// pkg/hestia_cli/signals.go
//
// Interrupt handling. The first SIGINT/SIGTERM cancels the run context so the
// running external command is killed and the workflow stops; partial state on
// disk is left as is. A second signal exits immediately.

package hestia_cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CodeMonkeyCybersecurity/hestia/pkg/logger"
	"go.uber.org/zap"
)

// SignalHandler cancels a context on the first interrupt.
type SignalHandler struct {
	ctx     context.Context
	cancel  context.CancelFunc
	sigChan chan os.Signal
	done    chan struct{}
	exit    func(int)
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(parent context.Context) *SignalHandler {
	ctx, cancel := context.WithCancel(parent)

	h := &SignalHandler{
		ctx:     ctx,
		cancel:  cancel,
		sigChan: make(chan os.Signal, 2),
		done:    make(chan struct{}),
		exit:    os.Exit,
	}

	signal.Notify(h.sigChan, os.Interrupt, syscall.SIGTERM)
	go h.handleSignals()

	return h
}

// Context returns the cancellable context
func (h *SignalHandler) Context() context.Context {
	return h.ctx
}

func (h *SignalHandler) handleSignals() {
	select {
	case sig := <-h.sigChan:
		logger.L().Warn("Received signal, aborting", zap.String("signal", sig.String()))
		fmt.Fprintf(os.Stderr, "\n⚠️  Received %v, aborting. Partial changes are left in place.\n", sig)
		h.cancel()
	case <-h.done:
		return
	}

	select {
	case sig := <-h.sigChan:
		logger.L().Error("Received second signal, forcing exit", zap.String("signal", sig.String()))
		h.exit(130)
	case <-h.done:
	}
}

// Stop releases the signal subscription.
func (h *SignalHandler) Stop() {
	signal.Stop(h.sigChan)
	close(h.done)
	h.cancel()
}
