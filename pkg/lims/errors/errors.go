package errors

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/beevik/etree"
)

var ErrNotFound = fmt.Errorf("not found")
var ErrUnauthorized = fmt.Errorf("unauthorized")
var ErrServer = fmt.Errorf("server error")
var ErrInternal = fmt.Errorf("internal error")
var ErrRequest = fmt.Errorf("request error")
var ErrBadResponse = fmt.Errorf("bad response")

var ErrMissingField = fmt.Errorf("missing field")
var ErrMalformedValue = fmt.Errorf("malformed value")
var ErrTypeMismatch = fmt.Errorf("type mismatch")
var ErrUnsupportedType = fmt.Errorf("unsupported type")
var ErrPrecondition = fmt.Errorf("precondition failed")
var ErrDetached = fmt.Errorf("entity has no uri")
var ErrUnknownAttribute = fmt.Errorf("unknown attribute")
var ErrUnknownField = fmt.Errorf("unknown user field")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewPreconditionError(msg string) error {
	return &myError{msg: msg, target: ErrPrecondition}
}

// NewDetachedError is returned when an operation needs a server assigned uri
// and the entity has not been created yet.
func NewDetachedError(operation, kind string) error {
	return &myError{
		msg:    fmt.Sprintf("%s: %s entity has not been created on the server yet", operation, kind),
		target: ErrDetached,
	}
}

func NewUnknownAttributeError(kind, attribute string) error {
	return &myError{
		msg:    fmt.Sprintf("%s has no attribute %q", kind, attribute),
		target: ErrUnknownAttribute,
	}
}

func NewUnsupportedTypeError(field string, value any) error {
	return &myError{
		msg:    fmt.Sprintf("cannot handle value of type %T for user field %q", value, field),
		target: ErrUnsupportedType,
	}
}

func NewUnknownFieldError(owner, field string) error {
	msg := fmt.Sprintf("no user field named %q", field)
	if owner != "" {
		msg = owner + ": " + msg
	}
	return &myError{msg: msg, target: ErrUnknownField}
}

// FieldError carries the entity and field that failed to decode.
type FieldError struct {
	Entity string
	Field  string
	Err    error
}

func (fe *FieldError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", fe.Entity, fe.Field, fe.Err.Error())
}

func (fe *FieldError) Unwrap() error {
	return fe.Err
}

func NewMissingFieldError(entity, field string) error {
	return &FieldError{Entity: entity, Field: field, Err: ErrMissingField}
}

func NewMalformedValueError(entity, field, text string, cause error) error {
	return &FieldError{
		Entity: entity,
		Field:  field,
		Err:    fmt.Errorf("%w %q (%s)", ErrMalformedValue, text, cause.Error()),
	}
}

// TypeMismatchError reports a write whose value disagrees with
// the declared type of the field.
type TypeMismatchError struct {
	Entity   string
	Field    string
	Tag      string
	Expected string
	Actual   string
}

func (tme *TypeMismatchError) Error() string {
	msg := fmt.Sprintf("%s field %q requires %s value, got %s", tme.Tag, tme.Field, tme.Expected, tme.Actual)
	if tme.Entity != "" {
		msg = tme.Entity + ": " + msg
	}
	return msg
}

func (tme *TypeMismatchError) Is(target error) bool { return target == ErrTypeMismatch }

func NewTypeMismatchError(entity, field, tag, expected string, value any) error {
	return &TypeMismatchError{
		Entity:   entity,
		Field:    field,
		Tag:      tag,
		Expected: expected,
		Actual:   fmt.Sprintf("%T", value),
	}
}

// TransportError is a non successful response from the LIMS.
type TransportError struct {
	Code             int
	Message          string
	SuggestedActions string
	target           error
}

func (te *TransportError) Error() string {
	msg := fmt.Sprintf("%d: %s", te.Code, te.Message)
	if te.SuggestedActions != "" {
		msg += " " + te.SuggestedActions
	}
	return msg
}

func (te *TransportError) Is(target error) bool { return target == te.target }

// NewErrorFromExceptionReport maps a failed response to a TransportError. The
// LIMS describes failures in an exception document with a message and an
// optional suggested action. Bodies that are not such a document are carried raw.
func NewErrorFromExceptionReport(code int, body []byte) error {
	te := &TransportError{
		Code:   code,
		target: targetForStatus(code),
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil || doc.Root() == nil {
		te.Message = strings.TrimSpace(string(body))
		return te
	}

	msg := doc.Root().SelectElement("message")
	if msg == nil {
		te.Message = http.StatusText(code)
		return te
	}

	te.Message = msg.Text()

	if actions := doc.Root().SelectElement("suggested-actions"); actions != nil {
		te.SuggestedActions = actions.Text()
	}

	return te
}

func targetForStatus(code int) error {
	switch {
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrUnauthorized
	case code >= http.StatusInternalServerError:
		return ErrServer
	}
	return ErrRequest
}
