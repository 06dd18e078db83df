package model

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

var (
	ErrDeviceCommand = errors.New("device command failed")
)

// Failure describes why a command could not be executed on a device.
type Failure struct {
	// Message is a short description of the failure.
	Message string `json:"error"`

	// StatusCode is the HTTP status returned by the API, zero when no response was received.
	StatusCode int `json:"statusCode,omitempty"`

	// Details holds the raw response body returned along with StatusCode.
	Details string `json:"details,omitempty"`
}

// NewStatusFailure returns a Failure for a non success API response.
func NewStatusFailure(statusCode int, body string) *Failure {
	return &Failure{
		Message:    fmt.Sprintf("Command failed with status %d", statusCode),
		StatusCode: statusCode,
		Details:    body,
	}
}

func (f *Failure) Error() string {
	if f.Details == "" {
		return f.Message
	}

	return f.Message + ": " + f.Details
}

// ExecutionResult is the outcome of a command on a single device,
// exactly one of Result or Error is set.
type ExecutionResult struct {
	Device   string   `json:"device"`
	DeviceID string   `json:"deviceId"`
	Result   *Value   `json:"result,omitempty"`
	Error    *Failure `json:"error,omitempty"`
}

// Succeeded returns true when the result carries no failure.
func (r *ExecutionResult) Succeeded() bool {
	return r.Error == nil
}

// NewSuccess returns the ExecutionResult for a device on which the command succeeded.
func NewSuccess(device *Device, result Value) ExecutionResult {
	return ExecutionResult{Device: device.DisplayName, DeviceID: device.ID, Result: &result}
}

// NewFailure returns the ExecutionResult for a device on which the command failed.
func NewFailure(device *Device, failure *Failure) ExecutionResult {
	return ExecutionResult{Device: device.DisplayName, DeviceID: device.ID, Error: failure}
}

// Results aggregates the outcome of a run, both lists are in device iteration order.
type Results struct {
	Successful []ExecutionResult `json:"successful"`
	Failed     []ExecutionResult `json:"failed"`
}

// NewResults returns an empty Results.
func NewResults() *Results {
	return &Results{
		Successful: []ExecutionResult{},
		Failed:     []ExecutionResult{},
	}
}

// Add files the result under Successful or Failed.
func (r *Results) Add(result ExecutionResult) {
	if result.Succeeded() {
		r.Successful = append(r.Successful, result)
		return
	}

	r.Failed = append(r.Failed, result)
}

// Total returns the count of devices the results were collected for.
func (r *Results) Total() int {
	return len(r.Successful) + len(r.Failed)
}

// Err returns an error listing every failed device, nil when none failed.
func (r *Results) Err() error {
	var merr *multierror.Error

	for _, f := range r.Failed {
		merr = multierror.Append(
			merr,
			errors.Wrap(ErrDeviceCommand, fmt.Sprintf("%s (%s): %s", f.Device, f.DeviceID, f.Error.Error())),
		)
	}

	return merr.ErrorOrNil()
}
