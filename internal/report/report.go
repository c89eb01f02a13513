// Package report provides the structured error type shared by every phase
// of the compiler pipeline.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Schema is the stable schema tag stamped onto every Report.
const Schema = "lucidc.error/v1"

// Report is the canonical structured error value produced by the core.
// Every error kind named in spec.md section 7 is reported as one of these
// rather than a bare error string, so a caller can recover the error kind
// programmatically.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a *Report as an error so it survives errors.As.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// Wrap returns r as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// As extracts a *Report from an error chain.
func As(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// New builds a Report for the given phase/code/message.
func New(phase, code, message string, data map[string]any) *Report {
	return &Report{Schema: Schema, Code: code, Phase: phase, Message: message, Data: data}
}

// Newf is New with a formatted message.
func Newf(phase, code string, data map[string]any, format string, args ...any) *Report {
	return New(phase, code, fmt.Sprintf(format, args...), data)
}

// JSON renders the report as indented JSON for machine consumption.
func (r *Report) JSON() (string, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}
