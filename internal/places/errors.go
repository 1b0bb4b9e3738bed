package places

import "fmt"

// ProviderError is returned when the provider answers with a non-success status.
type ProviderError struct {
	Op      string
	Status  string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: provider status %s: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: provider status %s", e.Op, e.Status)
}

// TransportError is returned when the provider could not be reached or its
// response could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
