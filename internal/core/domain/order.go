package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxDescriptionLength is the exclusive upper bound on description length, in characters.
const MaxDescriptionLength = 200

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusInTransit OrderStatus = "in-transit"
	StatusCompleted OrderStatus = "completed"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{StatusNew, StatusPending, StatusConfirmed, StatusInTransit, StatusCompleted}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ServiceType tells whether the order is served at the venue or delivered.
type ServiceType string

const (
	ServiceInVenue  ServiceType = "in-venue"
	ServiceDelivery ServiceType = "delivery"
)

// Valid reports whether t is a known service type.
func (t ServiceType) Valid() bool {
	return t == ServiceInVenue || t == ServiceDelivery
}

// Order is a single restaurant service order.
//
// Author refers to User.Username but is a display-only reference: nothing checks
// that the user exists, and edits may leave it dangling.
type Order struct {
	ID          string      `json:"id"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"created_at"`
	Author      string      `json:"author"`
	Phone       string      `json:"phone"`
	ServiceType ServiceType `json:"service_type"`
	Guests      int         `json:"guests"`
	Status      OrderStatus `json:"status"`
}

// Validate checks every field invariant and reports the first violation wrapped
// in ErrInvalidOrder. It has no side effects.
func (o Order) Validate() error {
	switch {
	case o.ID == "":
		return invalid("id", "must not be empty")
	case !utf8.ValidString(o.ID):
		return invalid("id", "must be valid UTF-8")
	case o.Description == "":
		return invalid("description", "must not be empty")
	case !utf8.ValidString(o.Description):
		return invalid("description", "must be valid UTF-8")
	case utf8.RuneCountInString(o.Description) >= MaxDescriptionLength:
		return invalid("description", fmt.Sprintf("must be shorter than %d characters", MaxDescriptionLength))
	case o.CreatedAt.IsZero():
		return invalid("created_at", "must be a valid timestamp")
	case strings.TrimSpace(o.Author) == "":
		return invalid("author", "must not be blank")
	case !utf8.ValidString(o.Author):
		return invalid("author", "must be valid UTF-8")
	case o.Phone == "":
		return invalid("phone", "must not be empty")
	case !utf8.ValidString(o.Phone):
		return invalid("phone", "must be valid UTF-8")
	case o.Guests < 1:
		return invalid("guests", "must be at least 1")
	case !o.ServiceType.Valid():
		return invalid("service_type", fmt.Sprintf("unknown value %q", o.ServiceType))
	case !o.Status.Valid():
		return invalid("status", fmt.Sprintf("unknown value %q", o.Status))
	}
	return nil
}

// IsValid is the boolean form of Validate.
func (o Order) IsValid() bool {
	return o.Validate() == nil
}

func invalid(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidOrder, field, reason)
}

// Filterable field names, matching the storage encoding.
const (
	FieldID          = "id"
	FieldDescription = "description"
	FieldCreatedAt   = "created_at"
	FieldAuthor      = "author"
	FieldPhone       = "phone"
	FieldServiceType = "service_type"
	FieldGuests      = "guests"
	FieldStatus      = "status"
)

// FieldValue returns the string form of the named field, or "" for unknown fields.
func (o Order) FieldValue(field string) string {
	switch field {
	case FieldID:
		return o.ID
	case FieldDescription:
		return o.Description
	case FieldCreatedAt:
		if o.CreatedAt.IsZero() {
			return ""
		}
		return o.CreatedAt.UTC().Format(time.RFC3339)
	case FieldAuthor:
		return o.Author
	case FieldPhone:
		return o.Phone
	case FieldServiceType:
		return string(o.ServiceType)
	case FieldGuests:
		return strconv.Itoa(o.Guests)
	case FieldStatus:
		return string(o.Status)
	default:
		return ""
	}
}

// Filter is a set of field=value constraints, keyed by field name. An order is
// retained only if it satisfies every constraint. Author matches by
// case-insensitive substring, every other field by case-insensitive equality.
type Filter map[string]string

// Matches reports whether o satisfies every constraint in f.
func (f Filter) Matches(o Order) bool {
	for field, want := range f {
		want = strings.ToLower(want)
		got := strings.ToLower(o.FieldValue(field))
		if field == FieldAuthor {
			if !strings.Contains(got, want) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

// OrderPatch carries a partial update. Nil fields are left untouched.
type OrderPatch struct {
	// ID is accepted for symmetry with the stored record but never applied.
	ID          *string
	Description *string
	// CreatedAt is an encoded timestamp; an unparsable value is ignored.
	CreatedAt   *string
	Author      *string
	Phone       *string
	ServiceType *ServiceType
	Guests      *int
	Status      *OrderStatus
}

// createdAtLayouts are tried in order when a patch carries an encoded timestamp.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp decodes an encoded timestamp using the accepted layouts.
// Layouts without a zone are read in the local time zone. The result is UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range createdAtLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Apply returns a copy of o with the patch merged in. The id never changes.
func (p OrderPatch) Apply(o Order) Order {
	if p.Description != nil {
		o.Description = *p.Description
	}
	if p.CreatedAt != nil {
		if t, ok := ParseTimestamp(*p.CreatedAt); ok {
			o.CreatedAt = t
		}
	}
	if p.Author != nil {
		o.Author = *p.Author
	}
	if p.Phone != nil {
		o.Phone = *p.Phone
	}
	if p.ServiceType != nil {
		o.ServiceType = *p.ServiceType
	}
	if p.Guests != nil {
		o.Guests = *p.Guests
	}
	if p.Status != nil {
		o.Status = *p.Status
	}
	return o
}
