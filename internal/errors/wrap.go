package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

// Wrap annotates err with msg and attrs while keeping err in the chain for Is and As.
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	var pcs [1]uintptr
	// Skip runtime.Callers and this function.
	runtime.Callers(2, pcs[:])
	wrapper := AnnotatedError{
		msg:   msg,
		pc:    pcs[0],
		attrs: attrs,
	}
	return fmt.Errorf("%w: %w", wrapper, err)
}

// Join exposes stdlib errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}

// SlogError formats err as a slog.Attr for log events. Annotated errors contribute
// their source location and context attributes.
func SlogError(err error) slog.Attr {
	var annotated AnnotatedError
	if As(err, &annotated) {
		return slog.Group("error",
			slog.String("msg", err.Error()),
			slog.Any("context", annotated.LogValue()),
		)
	}
	return slog.String("error", err.Error())
}
