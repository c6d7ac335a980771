// Package format turns listing values into the display strings shared by the
// card and detail views.
package format

import (
	"math"
	"strconv"
	"strings"
)

const (
	// Star is the glyph used for ratings.
	Star = "★"

	// MaxStars bounds every rating display.
	MaxStars = 5

	// PerNight follows a formatted price as its own fragment.
	PerNight = "/night"
)

// Stars returns the star glyphs for a property rating: one per whole point,
// plus one more when there is any fractional part. 4.1 and 4.9 both show five.
// The rating is clamped to [0, 5]; NaN and infinities count as 0.
func Stars(rating float64) string {
	r := clampRating(rating)
	n := int(math.Floor(r))
	if r != math.Floor(r) {
		n++
	}
	return strings.Repeat(Star, n)
}

// ReviewStars returns exactly rating glyphs, clamped to [0, 5].
func ReviewStars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > MaxStars {
		rating = MaxStars
	}
	return strings.Repeat(Star, rating)
}

// Rating returns the numeric rating as written, e.g. "4.5" or "4".
// The value is not clamped; it labels whatever the listing says.
func Rating(rating float64) string {
	return number(rating)
}

// Price returns "$" followed by the price in its shortest decimal form.
// No separators and no rounding: 100 -> "$100", 99.5 -> "$99.5".
func Price(price float64) string {
	return "$" + number(price)
}

func clampRating(r float64) float64 {
	switch {
	case math.IsNaN(r), math.IsInf(r, 0), r < 0:
		return 0
	case r > MaxStars:
		return MaxStars
	}
	return r
}

func number(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
