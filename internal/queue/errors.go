package queue

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfig marks a missing or invalid construction parameter.
	ErrConfig = errors.New("queue configuration error")
	// ErrSchema marks a failed table existence check, column check, or DDL statement.
	ErrSchema = errors.New("queue schema error")
	// ErrStorage marks a failed read, write, or transaction statement.
	ErrStorage = errors.New("queue storage error")
	// ErrCodec marks a payload that could not be encoded or decoded by a Typed queue.
	ErrCodec = errors.New("queue codec error")
)

// ErrorClassifier allows errors to declare their classification.
type ErrorClassifier interface {
	// ErrorKind returns a string classification of the error.
	ErrorKind() string
}

// Kind classifies an engine error as "configuration", "schema", "storage" or
// "codec". Errors implementing ErrorClassifier report their own kind. Unknown
// errors return an empty string.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return "configuration"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrStorage):
		return "storage"
	case errors.Is(err, ErrCodec):
		return "codec"
	}
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	return ""
}

// wrap tags err with marker and the operation that failed so callers can
// match on the marker with errors.Is and still unwrap the backend error.
func wrap(marker error, operation string, err error) error {
	operation = strings.TrimSpace(operation)
	switch {
	case err != nil && operation != "":
		return fmt.Errorf("%w: %s: %w", marker, operation, err)
	case err != nil:
		return fmt.Errorf("%w: %w", marker, err)
	case operation != "":
		return fmt.Errorf("%w: %s", marker, operation)
	default:
		return marker
	}
}

func configError(format string, args ...any) error {
	return wrap(ErrConfig, fmt.Sprintf(format, args...), nil)
}
