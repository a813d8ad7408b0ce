package service

// Service is a long-lived resource owned by the process: the speaker, the telemetry store, the engine
//
// Lifecycle:
//  1. Construction (via the owning package)
//  2. Register with a Hub
//  3. Start, in dependency order
//  4. Stop, in reverse start order
type Service interface {
	// Name returns the unique identifier for this service
	Name() string

	// Dependencies returns names of services that must start before this one
	Dependencies() []string

	// Start acquires the resource; a failure stops everything already started
	Start() error

	// Stop releases the resource
	// Must be idempotent
	Stop() error
}

// Func adapts plain start/stop functions to Service; nil funcs are no-ops
type Func struct {
	ID        string
	DependsOn []string
	OnStart   func() error
	OnStop    func() error
}

func (f Func) Name() string           { return f.ID }
func (f Func) Dependencies() []string { return f.DependsOn }

func (f Func) Start() error {
	if f.OnStart == nil {
		return nil
	}
	return f.OnStart()
}

func (f Func) Stop() error {
	if f.OnStop == nil {
		return nil
	}
	return f.OnStop()
}
