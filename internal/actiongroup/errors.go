package actiongroup

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// UnknownFunctionError is returned when an invocation names a function the
// handler does not serve.
type UnknownFunctionError struct {
	Function string
}

func (e *UnknownFunctionError) Error() string {
	return "Unknown function: " + e.Function
}

// MissingParameterError is returned when a required parameter was not supplied.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return "missing required parameter: " + e.Name
}

// ErrorMessage renders err for the {"error": ...} result. AWS API errors are
// rendered with their error code so the agent can tell throttling from
// missing resources.
func ErrorMessage(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorMessage() != "" {
		return fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err.Error()
}
