package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func validOrder() Order {
	return Order{
		ID:          "1",
		Description: "Birthday booking, cake needed",
		CreatedAt:   time.Date(2023, 10, 1, 10, 0, 0, 0, time.UTC),
		Author:      "ivanov",
		Phone:       "+79001112233",
		ServiceType: ServiceInVenue,
		Guests:      5,
		Status:      StatusConfirmed,
	}
}

func TestOrder_Validate_Valid(t *testing.T) {
	if err := validOrder().Validate(); err != nil {
		t.Fatalf("expected valid order, got: %v", err)
	}
	if !validOrder().IsValid() {
		t.Fatal("IsValid disagrees with Validate")
	}
}

func TestOrder_Validate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Order)
	}{
		{"empty id", func(o *Order) { o.ID = "" }},
		{"empty description", func(o *Order) { o.Description = "" }},
		{"description of 200 chars", func(o *Order) { o.Description = strings.Repeat("a", 200) }},
		{"zero guests", func(o *Order) { o.Guests = 0 }},
		{"negative guests", func(o *Order) { o.Guests = -3 }},
		{"blank author", func(o *Order) { o.Author = "   " }},
		{"zero timestamp", func(o *Order) { o.CreatedAt = time.Time{} }},
		{"empty phone", func(o *Order) { o.Phone = "" }},
		{"invalid utf-8 id", func(o *Order) { o.ID = "1\xff" }},
		{"invalid utf-8 description", func(o *Order) { o.Description = "cake\xff" }},
		{"invalid utf-8 author", func(o *Order) { o.Author = "iva\xffnov" }},
		{"invalid utf-8 phone", func(o *Order) { o.Phone = "+7\xfe" }},
		{"unknown service type", func(o *Order) { o.ServiceType = "takeaway" }},
		{"unknown status", func(o *Order) { o.Status = "lost" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := validOrder()
			tc.mutate(&o)
			err := o.Validate()
			if !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got: %v", err)
			}
			if o.IsValid() {
				t.Error("IsValid returned true for an invalid order")
			}
		})
	}
}

func TestOrder_Validate_DescriptionCountsCharacters(t *testing.T) {
	o := validOrder()
	// 199 two-byte runes is still under the limit.
	o.Description = strings.Repeat("ж", 199)
	if err := o.Validate(); err != nil {
		t.Fatalf("expected 199 characters to be accepted, got: %v", err)
	}
}

func TestFilter_Matches(t *testing.T) {
	o := validOrder()
	o.Author = "Ivanov Ivan"
	o.Status = StatusNew

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", Filter{}, true},
		{"author substring any case", Filter{FieldAuthor: "iva"}, true},
		{"author no match", Filter{FieldAuthor: "petrov"}, false},
		{"status exact any case", Filter{FieldStatus: "NEW"}, true},
		{"status is not a substring match", Filter{FieldStatus: "ne"}, false},
		{"all constraints must hold", Filter{FieldStatus: "new", FieldAuthor: "petrov"}, false},
		{"guests by string", Filter{FieldGuests: "5"}, true},
		{"service type", Filter{FieldServiceType: "In-Venue"}, true},
		{"unknown field", Filter{"colour": "red"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.filter.Matches(o); got != tc.want {
				t.Errorf("Matches() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOrderPatch_Apply(t *testing.T) {
	other := "other"
	guests := 7
	desc := "Quiet table by the window"
	stamp := "2024-02-03T18:30"

	got := OrderPatch{ID: &other, Guests: &guests, Description: &desc, CreatedAt: &stamp}.Apply(validOrder())

	if got.ID != "1" {
		t.Errorf("id must never change, got %q", got.ID)
	}
	if got.Guests != 7 || got.Description != desc {
		t.Errorf("patch not applied: %+v", got)
	}
	want := time.Date(2024, 2, 3, 18, 30, 0, 0, time.Local)
	if !got.CreatedAt.Equal(want) {
		t.Errorf("expected created_at %v, got %v", want, got.CreatedAt)
	}
}

func TestOrderPatch_Apply_UnparsableDateIgnored(t *testing.T) {
	bad := "not a date"
	original := validOrder()

	got := OrderPatch{CreatedAt: &bad}.Apply(original)
	if !got.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("expected created_at unchanged, got %v", got.CreatedAt)
	}
}

func TestParseTimestamp(t *testing.T) {
	for _, in := range []string{"2023-10-01T10:00:00Z", "2023-10-01T10:00:00", "2023-10-01T10:00", "2023-10-01"} {
		if _, ok := ParseTimestamp(in); !ok {
			t.Errorf("expected %q to parse", in)
		}
	}
	if _, ok := ParseTimestamp("01/10/2023"); ok {
		t.Error("expected unsupported layout to fail")
	}
}

func TestParseTimestamp_Zones(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-10-01T10:00:00Z", time.Date(2023, 10, 1, 10, 0, 0, 0, time.UTC)},
		{"2023-10-01T10:00:00+03:00", time.Date(2023, 10, 1, 7, 0, 0, 0, time.UTC)},
		{"2023-10-01T10:00", time.Date(2023, 10, 1, 10, 0, 0, 0, time.Local)},
		{"2023-10-01", time.Date(2023, 10, 1, 0, 0, 0, 0, time.Local)},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tc.in)
			if !ok {
				t.Fatalf("expected %q to parse", tc.in)
			}
			if !got.Equal(tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
			if got.Location() != time.UTC {
				t.Errorf("expected a UTC result, got %v", got.Location())
			}
		})
	}
}
