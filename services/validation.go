// services/validation.go
package services

import (
	"math"
	"net/mail"
	"strings"
	"unicode/utf8"

	"leftover-food-system/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// FoodInput carries the host-supplied listing fields.
type FoodInput struct {
	HostID       uint     `json:"host_id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Quantity     string   `json:"quantity"`
	FoodType     string   `json:"food_type"`
	EventName    string   `json:"event_name"`
	ContactPhone string   `json:"contact_phone"`
	PickupTime   string   `json:"pickup_time"`
	Address      string   `json:"address"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

var foldCase = cases.Fold()

// clean trims and NFC-normalises free text so equal-looking input is stored identically.
func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// normalize returns a copy of in with cleaned text fields.
func (in FoodInput) normalize() FoodInput {
	in.Title = clean(in.Title)
	in.Description = clean(in.Description)
	in.Quantity = clean(in.Quantity)
	in.FoodType = foldCase.String(clean(in.FoodType))
	in.EventName = clean(in.EventName)
	in.ContactPhone = clean(in.ContactPhone)
	in.PickupTime = clean(in.PickupTime)
	in.Address = clean(in.Address)
	return in
}

// Validate normalises and checks the input. It returns the cleaned copy.
func (in FoodInput) Validate() (FoodInput, error) {
	in = in.normalize()

	required := []struct{ field, value string }{
		{"title", in.Title},
		{"quantity", in.Quantity},
		{"contact_phone", in.ContactPhone},
		{"address", in.Address},
	}
	for _, r := range required {
		if r.value == "" {
			return in, invalid(r.field, r.field+" is required")
		}
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"title", in.Title, 255},
		{"quantity", in.Quantity, 100},
		{"event_name", in.EventName, 255},
		{"pickup_time", in.PickupTime, 100},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return in, invalid(l.field, l.field+" is too long")
		}
	}

	if _, ok := normalizePhone(in.ContactPhone); !ok {
		return in, invalid("contact_phone", "contact_phone must contain 7 to 15 digits")
	}

	switch in.FoodType {
	case "", models.FoodTypeVeg, models.FoodTypeNonVeg, models.FoodTypeMixed:
	default:
		return in, invalid("food_type", "food_type must be veg, non-veg or mixed")
	}

	if (in.Latitude == nil) != (in.Longitude == nil) {
		return in, invalid("latitude", "latitude and longitude must be provided together")
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return in, invalid("latitude", "latitude must be between -90 and 90")
		}
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return in, invalid("longitude", "longitude must be between -180 and 180")
		}
		// decimal(9,6) columns
		lat, lon := roundCoord(*in.Latitude), roundCoord(*in.Longitude)
		in.Latitude, in.Longitude = &lat, &lon
	}
	return in, nil
}

func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// normalizePhone strips common separators and accepts an optional leading "+".
func normalizePhone(raw string) (string, bool) {
	var b strings.Builder
	digits := 0
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ', r == '-', r == '(', r == ')', r == '.':
		default:
			return "", false
		}
	}
	if digits < 7 || digits > 15 {
		return "", false
	}
	return b.String(), true
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email", "email is malformed")
	}
	return nil
}
