package errcode

// Code is a stable error identifier for the touch core.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK Code = "ok"

	// Bus means the transfer itself did not complete (transport failure).
	// Bus errors are retried up to the fixed retry budget; everything else
	// is a protocol failure and is surfaced as-is.
	Bus Code = "bus"

	// Timeout is a liveness or command-acknowledge deadline exceeded.
	Timeout Code = "timeout"

	// Checksum means a payload failed its integrity check. Never retried:
	// re-reading would return the same stale sample.
	Checksum Code = "checksum"

	// VerifyMismatch is a post-write readback comparison failure.
	VerifyMismatch Code = "verify_mismatch"

	// Protocol means the transfer completed but the data was malformed
	// (bad frame length, out-of-range touch count, unexpected ID bytes).
	Protocol Code = "protocol"

	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"
	ProbeFailed   Code = "probe_failed"
	Closed        Code = "closed"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Is lets errors.Is match an *E against its bare Code.
func (e *E) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.C
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	return Error
}

// Wrap builds an *E with an operation name and cause.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Msg builds an *E with an operation name and free-form detail.
func Msg(c Code, op, msg string) error {
	return &E{C: c, Op: op, Msg: msg}
}
