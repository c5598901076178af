package main

import (
	"fmt"
	"io"
	"strings"

	"randomcarnegie.app/internal/setup"
	"randomcarnegie.app/internal/setup/buildings"
	"randomcarnegie.app/internal/setup/donations"
)

// render prints a plain-text board: one line per row, "*" marks accent
// departments and the bracket shows visible copies ("##" full, "#." half).
func render(w io.Writer, s setup.Setup) {
	o := s.Options
	fmt.Fprintf(w, "seed %s  tiles=%s limit=%s permanent=%s players=%s\n", s.SeedString(), o.Tiles, o.Limit, o.Permanent, o.Players)
	fmt.Fprintf(w, "buildings %s\n", s.Buildings)
	if s.Layout.Placed < buildings.Placed {
		fmt.Fprintf(w, "warning: only %d of %d buildings placed\n", s.Layout.Placed, buildings.Placed)
	}
	fmt.Fprintln(w)

	for i, row := range s.Cells {
		parts := make([]string, 0, len(row))
		for _, c := range row {
			if c.Shown == 0 {
				continue
			}
			mark := " "
			if c.Accent {
				mark = "*"
			}
			vis := "##"
			if c.Shown == 1 {
				vis = "#."
			}
			parts = append(parts, fmt.Sprintf("%02d%s[%s]", c.Building.Value(), mark, vis))
		}
		fmt.Fprintf(w, "row %d  %s\n", i+1, strings.Join(parts, " "))
	}

	d := s.Donations
	if d == nil {
		return
	}
	fmt.Fprintf(w, "\ndonations (%d disks)\n", d.Budget)
	for _, row := range d.Grid {
		var sb strings.Builder
		for col, blocked := range row {
			if col != 0 {
				sb.WriteByte(' ')
			}
			if blocked {
				sb.WriteByte('X')
			} else {
				sb.WriteByte('.')
			}
		}
		fmt.Fprintf(w, "  %s\n", sb.String())
	}
	fmt.Fprintln(w, "blocked cities")
	var region donations.Region
	for _, b := range d.Blocked {
		if b.Region != region {
			region = b.Region
			fmt.Fprintf(w, "  %s\n", region)
		}
		fmt.Fprintf(w, "    %-16s %d/%d\n", b.City, b.Count, b.City.Spaces())
	}
}
