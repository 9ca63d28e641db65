package cli

import (
	"fmt"
	"io"

	"github.com/tactical-os/tos/errors"
)

// ErrorHandler turns coded errors into operator-facing messages.
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates an error handler writing to out.
func NewErrorHandler(verbose bool, out io.Writer) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     out,
	}
}

// Handle prints a message for err and returns it unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeConfigNotFound:
		fmt.Fprintf(h.Out, "Error: configuration not found. Create tos.yml or pass --config.\n")

	case errors.ErrCodeConfigInvalid, errors.ErrCodeConfigValidation:
		fmt.Fprintf(h.Out, "Error: %s\n", errors.Message(err))
		if tosErr, ok := err.(*errors.TosError); ok && tosErr.Details["path"] != nil {
			fmt.Fprintf(h.Out, "Check %v and run the command again.\n", tosErr.Details["path"])
		}

	case errors.ErrCodeConnectionFailed:
		fmt.Fprintf(h.Out, "Error: %s\n", errors.Message(err))
		fmt.Fprintf(h.Out, "Neither the native link nor SSH could reach the host.\n")

	case errors.ErrCodeUnreachable:
		fmt.Fprintf(h.Out, "Error: %s\n", errors.Message(err))
		if tosErr, ok := err.(*errors.TosError); ok && tosErr.Details["timeout"] != nil {
			fmt.Fprintf(h.Out, "Gave up after %v.\n", tosErr.Details["timeout"])
		}

	case errors.ErrCodeCommandFailed:
		fmt.Fprintf(h.Out, "Error: %s\n", errors.Message(err))
		if tosErr, ok := err.(*errors.TosError); ok {
			if stderr, ok := tosErr.Details["stderr"].(string); ok && stderr != "" {
				fmt.Fprintf(h.Out, "%s\n", stderr)
			}
		}

	default:
		fmt.Fprintf(h.Out, "Error: %v\n", err)
	}

	if h.Verbose {
		if tosErr, ok := err.(*errors.TosError); ok {
			fmt.Fprintf(h.Out, "\nError details:\n%s\n", tosErr.ToJSON())
		}
	}
	return err
}
