package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/evcraddock/staylist/internal/format"
	"github.com/evcraddock/staylist/internal/listing"
)

// printPropertyTable prints a list of properties as a formatted table.
func printPropertyTable(out io.Writer, props []*listing.Property) error {
	if len(props) == 0 {
		fmt.Fprintln(out, "No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "NAME\tLOCATION\tRATING\tPRICE\tDISCOUNT"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "----\t--------\t------\t-----\t--------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		discount := "-"
		if p.HasDiscount() {
			discount = p.Discount
		}
		location := p.Address.City + ", " + p.Address.Country

		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncate(p.Name, 40), truncate(location, 30), formatRating(p.Rating),
			format.Price(p.Price)+format.PerNight, discount); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(out, "\nTotal: %d properties\n", len(props))
	return nil
}

// formatRating returns the star glyphs followed by the numeric rating.
func formatRating(rating float64) string {
	return fmt.Sprintf("%s (%s)", format.Stars(rating), format.Rating(rating))
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
