package errors

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// jsonDetailsPrefix tags a SafeDetails payload that carries marshaled
// structured details. The API error handler strips it when rendering.
const jsonDetailsPrefix = "__json__:%s"

// Builder accumulates error decorations. It is not itself an error;
// terminate every chain with Mark to get the marked error value back.
type Builder struct {
	err error
}

// NewError starts a chain from a fresh root cause.
func NewError(msg string) *Builder {
	return &Builder{err: errors.New(msg)}
}

// WithError starts a chain wrapping an existing error, typically one
// returned by a driver or provider SDK.
func WithError(err error) *Builder {
	return &Builder{err: err}
}

// WithMessage prefixes internal context onto the error message. Not
// shown to API clients.
func (b *Builder) WithMessage(msg string) *Builder {
	b.err = errors.WithMessage(b.err, msg)
	return b
}

// WithHint attaches the client-facing message for this error.
func (b *Builder) WithHint(hint string) *Builder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *Builder) WithHintf(format string, args ...any) *Builder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// WithReportableDetails attaches structured details that are safe to
// return to clients. Details that fail to marshal are dropped rather
// than failing the chain.
func (b *Builder) WithReportableDetails(details map[string]any) *Builder {
	if len(details) == 0 {
		return b
	}
	payload, err := json.Marshal(details)
	if err != nil {
		return b
	}
	b.err = errors.WithSafeDetails(b.err, jsonDetailsPrefix, errors.Safe(string(payload)))
	return b
}

// Mark associates the chain with a sentinel and returns the final
// error. Must be the last call.
func (b *Builder) Mark(sentinel error) error {
	b.err = errors.Mark(b.err, sentinel)
	return b.err
}
