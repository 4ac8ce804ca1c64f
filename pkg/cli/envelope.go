package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/flowctl/flowctl/pkg/apperr"
	"github.com/flowctl/flowctl/pkg/console"
	"github.com/flowctl/flowctl/pkg/validate"
)

// Envelope is the success output contract (spec §4.H): { success: true,
// data: <component result> }.
type Envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorDetail is the structured payload of an ErrorEnvelope.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorEnvelope is the error output contract (spec §4.H): { success: false,
// error: { code, message, details? } }.
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

// ValidationEnvelope is the validate command's dedicated output contract
// (spec §4.H): { valid, errors, warnings, statistics, suggestions }.
type ValidationEnvelope struct {
	Valid       bool                `json:"valid"`
	Errors      []validate.Finding  `json:"errors"`
	Warnings    []validate.Finding  `json:"warnings"`
	Statistics  validate.Statistics `json:"statistics"`
	Suggestions []validate.Finding  `json:"suggestions,omitempty"`
}

// NewValidationEnvelope converts a validate.Result into its wire envelope.
func NewValidationEnvelope(r *validate.Result) ValidationEnvelope {
	return ValidationEnvelope{
		Valid:       r.Valid,
		Errors:      r.Errors,
		Warnings:    r.Warnings,
		Statistics:  r.Statistics,
		Suggestions: r.Suggestions,
	}
}

// errorEnvelopeFor classifies err into an ErrorEnvelope. Unclassified
// errors (anything not built through pkg/apperr) still get a well-formed
// envelope, per spec §7 "the containing command still emits a well-formed
// error envelope."
func errorEnvelopeFor(err error) ErrorEnvelope {
	if appErr, ok := apperr.As(err); ok {
		return ErrorEnvelope{Success: false, Error: ErrorDetail{
			Code:    appErr.Code,
			Message: appErr.Error(),
			Details: appErr.Details,
		}}
	}
	return ErrorEnvelope{Success: false, Error: ErrorDetail{
		Code:    "UNKNOWN_ERROR",
		Message: err.Error(),
	}}
}

// IO carries the global output flags every command reads (spec §6 "every
// command accepts --json, --save <path>, --verbose/--quiet/--no-color").
type IO struct {
	JSON     bool
	SavePath string
	Verbose  bool
	Quiet    bool
	NoColor  bool
}

// EmitSuccess writes a success envelope and returns the process exit code
// (always 0).
func (io IO) EmitSuccess(data any) int {
	env := Envelope{Success: true, Data: data}
	io.trySave(env)
	if io.JSON {
		writeJSON(os.Stdout, env)
		return 0
	}
	fmt.Fprint(os.Stdout, console.RenderStruct(data))
	return 0
}

// EmitError writes an error envelope (JSON mode) or a formatted message
// (console mode) to stderr, and returns err's sysexits exit code.
func (io IO) EmitError(err error) int {
	env := errorEnvelopeFor(err)
	io.trySave(env)
	if io.JSON {
		writeJSON(os.Stdout, env)
	} else if !io.Quiet {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(env.Error.Message))
	}
	return apperr.ExitCodeFor(err)
}

// EmitValidation writes a ValidationEnvelope and returns the exit code: 0
// when the workflow is valid, apperr.KindData's exit code otherwise (spec
// §8 "the process exit code equals the sysexits value corresponding to the
// most severe finding class").
func (io IO) EmitValidation(result *validate.Result) int {
	env := NewValidationEnvelope(result)
	io.trySave(env)
	if io.JSON {
		writeJSON(os.Stdout, env)
	} else {
		fmt.Fprint(os.Stdout, renderValidation(result, io.Verbose))
	}
	if !result.Valid {
		return apperr.KindData.ExitCode()
	}
	return 0
}

// EmitCancelled writes the truncated envelope spec §5 requires on
// SIGINT/SIGTERM: { success: false, error: { code: CANCELLED } },
// alongside whatever partial results had already been produced.
func (io IO) EmitCancelled(partial any) int {
	err := apperr.New(apperr.KindCancelled, apperr.CodeCancelled, "operation cancelled")
	env := errorEnvelopeFor(err)
	if partial != nil {
		env.Error.Details = map[string]any{"partial": partial}
	}
	io.trySave(env)
	if io.JSON {
		writeJSON(os.Stdout, env)
	} else if !io.Quiet {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage("cancelled; partial results below"))
		if partial != nil {
			fmt.Fprint(os.Stdout, console.RenderStruct(partial))
		}
	}
	return apperr.KindCancelled.ExitCode()
}

func (io IO) trySave(env any) {
	if io.SavePath == "" {
		return
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("could not encode envelope for --save: %v", err)))
		return
	}
	if err := os.WriteFile(io.SavePath, b, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("could not write --save path %s: %v", io.SavePath, err)))
	}
}

func writeJSON(w *os.File, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// renderValidation formats a validation result for console (non-JSON)
// output. A clean result gets a one-line success message; otherwise
// console.FormatValidationSummary renders the grouped error/warning
// breakdown (and, when verbose, a detailed per-finding listing).
func renderValidation(r *validate.Result, verbose bool) string {
	if r.Valid && len(r.Warnings) == 0 {
		return console.FormatSuccessMessage(fmt.Sprintf("workflow is valid (%d node(s))", r.Statistics.NodeCount)) + "\n"
	}
	return console.FormatValidationSummary(r, verbose)
}
