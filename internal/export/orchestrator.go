package export

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ourlovestory/scrapbook/pkg/logger"
)

// Phase is the client-side view of one export attempt. Unlike the worker's
// pipeline states, phases only track what the user needs to see.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhasePreparing Phase = "PREPARING"
	PhaseRequested Phase = "REQUESTED"
	PhaseSuccess   Phase = "SUCCESS"
	PhaseError     Phase = "ERROR"
)

// ErrNoSections is the zero-page guard: nothing is minted and no request
// is made for an empty scrapbook.
var ErrNoSections = errors.New("add some sections first")

// Backend is the service surface the orchestrator drives. Implemented over
// HTTP by Client; faked in tests.
type Backend interface {
	PageCount(ctx context.Context) (int, error)
	MintToken(ctx context.Context) (string, error)
	GeneratePDF(ctx context.Context, token string) (downloadURL, fileName string, err error)
	Download(ctx context.Context, url, fileName string) (savedPath string, err error)
}

// Orchestrator runs one export at a time: guard, mint, blocking request,
// download. A failed attempt stays in ERROR until Retry or Dismiss.
type Orchestrator struct {
	backend Backend

	// OnPhase observes every transition; nil is fine.
	OnPhase func(Phase)

	mu        sync.Mutex
	phase     Phase
	lastErr   error
	savedPath string
}

func New(backend Backend) *Orchestrator {
	return &Orchestrator{backend: backend, phase: PhaseIdle}
}

func (o *Orchestrator) transition(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
	logger.Debugf("export phase: %s", p)
	if o.OnPhase != nil {
		o.OnPhase(p)
	}
}

// Phase returns the current phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// Err returns the failure of the last attempt, nil outside ERROR.
func (o *Orchestrator) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastErr
}

// SavedPath returns where the last successful export was written.
func (o *Orchestrator) SavedPath() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.savedPath
}

// Export runs a full attempt. An empty scrapbook is an informational no-op:
// the orchestrator stays IDLE and returns ErrNoSections.
func (o *Orchestrator) Export(ctx context.Context) error {
	n, err := o.backend.PageCount(ctx)
	if err != nil {
		return o.fail(fmt.Errorf("load scrapbook: %w", err))
	}
	if n == 0 {
		return ErrNoSections
	}
	return o.run(ctx)
}

// Retry restarts a failed attempt from PREPARING. The old token is never
// reused; a fresh one is minted. Calling Retry outside ERROR is an error.
func (o *Orchestrator) Retry(ctx context.Context) error {
	if o.Phase() != PhaseError {
		return fmt.Errorf("retry is only valid after a failed export")
	}
	return o.run(ctx)
}

// Dismiss returns to IDLE from any terminal phase.
func (o *Orchestrator) Dismiss() {
	o.mu.Lock()
	o.lastErr = nil
	o.mu.Unlock()
	o.transition(PhaseIdle)
}

func (o *Orchestrator) run(ctx context.Context) error {
	o.transition(PhasePreparing)
	token, err := o.backend.MintToken(ctx)
	if err != nil {
		return o.fail(fmt.Errorf("mint export token: %w", err))
	}

	o.transition(PhaseRequested)
	url, fileName, err := o.backend.GeneratePDF(ctx, token)
	if err != nil {
		// surfaced verbatim: the service's message is the user's message
		return o.fail(err)
	}

	path, err := o.backend.Download(ctx, url, fileName)
	if err != nil {
		return o.fail(fmt.Errorf("download pdf: %w", err))
	}

	o.mu.Lock()
	o.savedPath = path
	o.lastErr = nil
	o.mu.Unlock()
	o.transition(PhaseSuccess)
	return nil
}

func (o *Orchestrator) fail(err error) error {
	o.mu.Lock()
	o.lastErr = err
	o.mu.Unlock()
	o.transition(PhaseError)
	return err
}
