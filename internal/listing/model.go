// Package listing provides the rental property model, catalog decoding and data access.
package listing

import (
	"errors"
	"net/url"
)

// BookingPath is the fixed route every "Book Now" action points at.
const BookingPath = "/booking"

// ErrNotFound is returned when no property matches a lookup.
var ErrNotFound = errors.New("property not found")

// Address is where a property is located.
type Address struct {
	City    string `json:"city" yaml:"city"`
	State   string `json:"state" yaml:"state"`
	Country string `json:"country" yaml:"country"`
}

// Offers holds the bed, shower and occupant counts. They are display
// strings and may carry units or text ("2 queen", "1.5").
type Offers struct {
	Bed       string `json:"bed" yaml:"bed"`
	Shower    string `json:"shower" yaml:"shower"`
	Occupants string `json:"occupants" yaml:"occupants"`
}

// Review is a guest rating and comment. Rating is a whole number 0..5.
type Review struct {
	Avatar  string `json:"avatar" yaml:"avatar"`
	Name    string `json:"name" yaml:"name"`
	Rating  int    `json:"rating" yaml:"rating"`
	Comment string `json:"comment" yaml:"comment"`
}

// Property represents a rentable listing.
type Property struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name" yaml:"name"`
	Address     Address  `json:"address" yaml:"address"`
	Rating      float64  `json:"rating" yaml:"rating"`
	Category    []string `json:"category" yaml:"category"`
	Price       float64  `json:"price" yaml:"price"`
	Offers      Offers   `json:"offers" yaml:"offers"`
	Image       string   `json:"image,omitempty" yaml:"image,omitempty"`
	Discount    string   `json:"discount,omitempty" yaml:"discount,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Reviews     []Review `json:"reviews,omitempty" yaml:"reviews,omitempty"`
}

// HasImage reports whether an image URL is set.
func (p *Property) HasImage() bool { return p.Image != "" }

// HasDiscount reports whether the discount badge should be shown.
// An empty string counts as no discount.
func (p *Property) HasDiscount() bool { return p.Discount != "" }

// HasCategories reports whether there is at least one category tag.
func (p *Property) HasCategories() bool { return len(p.Category) > 0 }

// HasDescription reports whether a description is set.
func (p *Property) HasDescription() bool { return p.Description != "" }

// HasReviews reports whether there is at least one review.
func (p *Property) HasReviews() bool { return len(p.Reviews) > 0 }

// DetailPath returns the detail route for the property.
// Properties are routed by name, not ID, so names must be unique in a catalog.
func (p *Property) DetailPath() string {
	return "/property/" + url.PathEscape(p.Name)
}

// HasAvatar reports whether the reviewer has an avatar URL.
func (r Review) HasAvatar() bool { return r.Avatar != "" }
