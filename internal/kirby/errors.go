package kirby

import (
	"errors"
	"fmt"
)

// ErrBinaryNotFound is returned when neither the env override nor the
// vendor/bin search produced a kirby binary.
var ErrBinaryNotFound = errors.New("kirby CLI binary not found")

func binaryNotFound(projectRoot string) error {
	return fmt.Errorf("%w: looked for vendor/bin/kirby above %s; set %s to the binary path",
		ErrBinaryNotFound, projectRoot, BinaryEnvVar)
}

// PayloadError reports a marker pair whose body is not valid JSON.
type PayloadError struct {
	Body string
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid JSON between output markers: %v", e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}
