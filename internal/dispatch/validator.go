package dispatch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/stepquest/stepquest-backend/internal/domain"
	"github.com/stepquest/stepquest-backend/internal/identity"
)

// Params is the raw, untyped request input for one action. Decode JSON
// bodies with json.Decoder.UseNumber so numeric fields arrive as
// json.Number and large IDs survive intact.
type Params map[string]any

// Reason classifies why validation rejected a request.
type Reason string

const (
	ReasonMissing          Reason = "missing"
	ReasonWrongType        Reason = "wrong_type"
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonIdentityMismatch Reason = "identity_mismatch"
)

// ValidationError reports the offending field and why it was rejected.
// It wraps domain.ErrValidation so callers can errors.Is against the
// taxonomy without caring about the field.
type ValidationError struct {
	Field  string
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q %s", domain.ErrMsgValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrValidation
}

// FieldUserID is the parameter carrying an explicit caller identity on
// unauthenticated requests.
const FieldUserID = "userid"

// Accepted date layouts, most specific first. The mobile client sends
// minute-precision timestamps for sessions and bare dates for step
// queries.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// BuildArgs resolves the caller identity and coerces every descriptor
// parameter, producing the fully-typed argument list for the backend
// procedure. It is the only path from raw request input to the
// dispatcher: values are returned as typed arguments to be bound as
// procedure parameters, never spliced into a command string.
func BuildArgs(d Descriptor, raw Params, ident *identity.Identity) ([]any, error) {
	args := make([]any, 0, len(d.Params)+1)

	if d.IdentityArg {
		userID, err := resolveUserID(d, raw, ident)
		if err != nil {
			return nil, err
		}
		args = append(args, userID)
	}

	for _, p := range d.Params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			return nil, &ValidationError{Field: p.Name, Reason: ReasonMissing}
		}
		typed, err := coerce(p, v)
		if err != nil {
			return nil, err
		}
		args = append(args, typed)
	}

	return args, nil
}

// resolveUserID is the single identity-resolution step: an
// authenticated session is authoritative, and a write request that
// names somebody else is rejected instead of silently overridden.
func resolveUserID(d Descriptor, raw Params, ident *identity.Identity) (int64, error) {
	if ident != nil {
		if supplied, ok := raw[FieldUserID]; ok && d.Write {
			claimed, err := toInt(supplied)
			if err != nil || claimed != ident.UserID {
				return 0, &ValidationError{Field: FieldUserID, Reason: ReasonIdentityMismatch}
			}
		}
		return ident.UserID, nil
	}

	if d.RequiresAuth {
		return 0, &ValidationError{Field: FieldUserID, Reason: ReasonUnauthenticated}
	}

	supplied, ok := raw[FieldUserID]
	if !ok || supplied == nil {
		return 0, &ValidationError{Field: FieldUserID, Reason: ReasonMissing}
	}
	userID, err := toInt(supplied)
	if err != nil {
		return 0, &ValidationError{Field: FieldUserID, Reason: ReasonWrongType}
	}
	return userID, nil
}

func coerce(p Param, v any) (any, error) {
	switch p.Kind {
	case KindInt:
		n, err := toInt(v)
		if err != nil {
			return nil, &ValidationError{Field: p.Name, Reason: ReasonWrongType}
		}
		return n, nil
	case KindFloat:
		f, err := toFloat(v)
		if err != nil {
			return nil, &ValidationError{Field: p.Name, Reason: ReasonWrongType}
		}
		return f, nil
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, &ValidationError{Field: p.Name, Reason: ReasonWrongType}
		}
		return s, nil
	case KindDate:
		s, ok := v.(string)
		if !ok {
			return nil, &ValidationError{Field: p.Name, Reason: ReasonWrongType}
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, &ValidationError{Field: p.Name, Reason: ReasonWrongType}
	default:
		return nil, &ValidationError{Field: p.Name, Reason: ReasonWrongType}
	}
}

// toInt parses strictly: no partial parses, no fraction truncation.
func toInt(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		return strconv.ParseInt(n.String(), 10, 64)
	case string:
		return strconv.ParseInt(n, 10, 64)
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		// Bodies decoded without UseNumber hand all numbers over as float64.
		if n != float64(int64(n)) {
			return 0, fmt.Errorf("not an integer: %v", n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("not an integer: %T", v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		return strconv.ParseFloat(n.String(), 64)
	case string:
		return strconv.ParseFloat(n, 64)
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
