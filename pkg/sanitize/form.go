package sanitize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Suhaibinator/SConvert/pkg/radix"
)

// Field names reported by FieldError.
const (
	FieldNumber    = "number"
	FieldFrom      = "from"
	FieldTo        = "to"
	FieldPrecision = "precision"
)

// ErrUnaryDisabled is returned for base 1 when Options.AllowUnary is false.
var ErrUnaryDisabled = errors.New("base 1 is not enabled")

// FieldError is a user-facing validation failure tied to one input field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Options controls what Check and Form.Request accept.
type Options struct {
	// AllowUnary admits base 1 (tally) on either side of a conversion.
	AllowUnary bool

	// DefaultPrecision is used when a form leaves the precision field empty.
	DefaultPrecision int

	// MaxPrecision is the largest precision accepted. It is capped at radix.MaxPrecision.
	MaxPrecision int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		DefaultPrecision: radix.DefaultPrecision,
		MaxPrecision:     radix.MaxPrecision,
	}
}

func (o Options) maxPrecision() int {
	if o.MaxPrecision <= 0 || o.MaxPrecision > radix.MaxPrecision {
		return radix.MaxPrecision
	}
	return o.MaxPrecision
}

// Check validates req against opts. A request that passes can be handed to
// radix without further checks; a request that fails yields a *FieldError.
func Check(req radix.Request, opts Options) error {
	if err := checkBase(req.From, opts); err != nil {
		return &FieldError{Field: FieldFrom, Err: err}
	}
	if err := checkBase(req.To, opts); err != nil {
		return &FieldError{Field: FieldTo, Err: err}
	}
	if req.Precision < 0 || req.Precision > opts.maxPrecision() {
		return &FieldError{
			Field: FieldPrecision,
			Err:   fmt.Errorf("%w: %d not in [0, %d]", radix.ErrInvalidPrecision, req.Precision, opts.maxPrecision()),
		}
	}
	if err := radix.Validate(req.Digits, req.From); err != nil {
		return &FieldError{Field: FieldNumber, Err: err}
	}
	return nil
}

func checkBase(base int, opts Options) error {
	if err := radix.ValidateBase(base); err != nil {
		return err
	}
	if base == 1 && !opts.AllowUnary {
		return fmt.Errorf("%w: %w", radix.ErrInvalidBase, ErrUnaryDisabled)
	}
	return nil
}

// Form holds the raw text of the conversion fields.
type Form struct {
	Number    string
	From      string
	To        string
	Precision string
}

// Request parses and validates the form. An empty precision field takes
// opts.DefaultPrecision.
func (f Form) Request(opts Options) (radix.Request, error) {
	from, err := parseBase(f.From)
	if err != nil {
		return radix.Request{}, &FieldError{Field: FieldFrom, Err: err}
	}
	to, err := parseBase(f.To)
	if err != nil {
		return radix.Request{}, &FieldError{Field: FieldTo, Err: err}
	}

	precision := opts.DefaultPrecision
	if p := strings.TrimSpace(f.Precision); p != "" {
		precision, err = strconv.Atoi(p)
		if err != nil {
			return radix.Request{}, &FieldError{
				Field: FieldPrecision,
				Err:   fmt.Errorf("%w: %q", radix.ErrInvalidPrecision, f.Precision),
			}
		}
	}

	req := radix.Request{
		Digits:    strings.TrimSpace(f.Number),
		From:      from,
		To:        to,
		Precision: precision,
	}
	if err := Check(req, opts); err != nil {
		return radix.Request{}, err
	}
	return req, nil
}

func parseBase(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", radix.ErrInvalidBase, s)
	}
	return n, nil
}
