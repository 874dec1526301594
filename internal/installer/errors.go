package installer

import (
	"fmt"
	"time"
)

// ConfigValidationError reports a controller config that does not match
// its schema. It is never retried.
type ConfigValidationError struct {
	Err error
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("invalid controller config: %v", e.Err)
}

func (e *ConfigValidationError) Unwrap() error { return e.Err }

// RunConfigError reports run options that do not fit the cluster config,
// e.g. tenant API tokens missing while authentication is enabled. It is
// returned before the first attempt.
type RunConfigError struct {
	Err error
}

func (e *RunConfigError) Error() string {
	return fmt.Sprintf("invalid run config: %v", e.Err)
}

func (e *RunConfigError) Unwrap() error { return e.Err }

// InfraCreationError reports a failure to obtain infrastructure.
type InfraCreationError struct {
	Err error
}

func (e *InfraCreationError) Error() string {
	return fmt.Sprintf("infrastructure creation failed: %v", e.Err)
}

func (e *InfraCreationError) Unwrap() error { return e.Err }

// ApplyConfigError reports a failure to write configuration into the cluster.
type ApplyConfigError struct {
	Object string
	Err    error
}

func (e *ApplyConfigError) Error() string {
	return fmt.Sprintf("failed to apply %s: %v", e.Object, e.Err)
}

func (e *ApplyConfigError) Unwrap() error { return e.Err }

// DeploymentError reports a failure to deploy the controller or to wait for
// the cluster's workloads.
type DeploymentError struct {
	Err error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("deployment failed: %v", e.Err)
}

func (e *DeploymentError) Unwrap() error { return e.Err }

// ReadinessError reports that waiting for the public endpoints ended
// without all of them being reachable.
type ReadinessError struct {
	Err error
}

func (e *ReadinessError) Error() string {
	return fmt.Sprintf("endpoints did not become reachable: %v", e.Err)
}

func (e *ReadinessError) Unwrap() error { return e.Err }

// AttemptTimeoutError is returned when an attempt exceeds its deadline.
type AttemptTimeoutError struct {
	Attempt int
	Timeout time.Duration
}

func (e *AttemptTimeoutError) Error() string {
	return fmt.Sprintf("attempt %d timed out after %s", e.Attempt, e.Timeout)
}
