package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BoatType is the closed set of boat categories.
type BoatType string

const (
	BoatTypeSailboat  BoatType = "SAILBOAT"
	BoatTypeMotorboat BoatType = "MOTORBOAT"
	BoatTypeYacht     BoatType = "YACHT"
	BoatTypeCatamaran BoatType = "CATAMARAN"
	BoatTypeFerry     BoatType = "FERRY"
	BoatTypeOther     BoatType = "OTHER"
)

var boatTypes = map[BoatType]struct{}{
	BoatTypeSailboat:  {},
	BoatTypeMotorboat: {},
	BoatTypeYacht:     {},
	BoatTypeCatamaran: {},
	BoatTypeFerry:     {},
	BoatTypeOther:     {},
}

// Valid reports whether t is one of the known boat types.
func (t BoatType) Valid() bool {
	_, ok := boatTypes[t]
	return ok
}

// DisplayDateLayout is the dd/MM/yyyy format dates are rendered with in API responses.
const DisplayDateLayout = "02/01/2006"

// DisplayDate keeps full timestamp precision internally but renders as a calendar date.
type DisplayDate struct {
	time.Time
}

func NewDisplayDate(t time.Time) DisplayDate {
	return DisplayDate{Time: t}
}

func (d DisplayDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DisplayDateLayout))
}

func (d *DisplayDate) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := time.Parse(DisplayDateLayout, s)
	if err != nil {
		return fmt.Errorf("date must use dd/MM/yyyy: %w", err)
	}
	d.Time = t
	return nil
}

// Boat is the managed resource.
type Boat struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Capacity    int32       `json:"capacity"`
	Size        int32       `json:"size"`
	Type        BoatType    `json:"type"`
	CreatedAt   DisplayDate `json:"createdAt"`
	UpdatedAt   DisplayDate `json:"updatedAt"`
}

// BoatInput is the client-supplied representation used by create and update.
// Server-owned fields are accepted on the wire and ignored.
type BoatInput struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Capacity    int32           `json:"capacity"`
	Size        int32           `json:"size"`
	Type        BoatType        `json:"type"`
	CreatedAt   json.RawMessage `json:"createdAt,omitempty"`
	UpdatedAt   json.RawMessage `json:"updatedAt,omitempty"`
}

// FieldError describes a single violated boat invariant.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every violated invariant of an input.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the entity invariants. It returns nil or a ValidationErrors.
func (in BoatInput) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "must not be empty"})
	}
	if in.Capacity <= 0 {
		errs = append(errs, FieldError{Field: "capacity", Message: "must be positive"})
	}
	switch {
	case in.Type == "":
		errs = append(errs, FieldError{Field: "type", Message: "Type cannot be null"})
	case !in.Type.Valid():
		errs = append(errs, FieldError{Field: "type", Message: fmt.Sprintf("unknown boat type %q", in.Type)})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// NewBoat builds an unsaved boat from a validated input, stamping both
// lifecycle timestamps with now.
func NewBoat(in BoatInput, now time.Time) Boat {
	return Boat{
		Name:        in.Name,
		Description: in.Description,
		Capacity:    in.Capacity,
		Size:        in.Size,
		Type:        in.Type,
		CreatedAt:   NewDisplayDate(now),
		UpdatedAt:   NewDisplayDate(now),
	}
}

// Merge returns existing with every editable field replaced by in.
// ID and CreatedAt are carried over; UpdatedAt becomes now, or one
// microsecond past the previous value if the clock has not moved.
// Postgres keeps microsecond precision, so a smaller step would be lost.
func Merge(existing Boat, in BoatInput, now time.Time) Boat {
	updatedAt := now
	if !updatedAt.After(existing.UpdatedAt.Time) {
		updatedAt = existing.UpdatedAt.Add(time.Microsecond)
	}
	return Boat{
		ID:          existing.ID,
		Name:        in.Name,
		Description: in.Description,
		Capacity:    in.Capacity,
		Size:        in.Size,
		Type:        in.Type,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   NewDisplayDate(updatedAt),
	}
}
