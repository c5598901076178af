package buildings

import "randomcarnegie.app/internal/setup/players"

// Cell is one displayed department: how many of its placed copies are shown for
// the player tier. Shown == 0 renders as an empty cell.
type Cell struct {
	Building Building `json:"building"`
	Accent   bool     `json:"accent"`
	Shown    int      `json:"shown"`
}

// Cells applies the visibility mask for p to every placed entry.
func (l Layout) Cells(p players.Players) [Rows][]Cell {
	var out [Rows][]Cell
	for i, row := range l.Rows {
		cells := make([]Cell, 0, len(row.Entries))
		for _, e := range row.Entries {
			shown := 0
			for _, idx := range e.Indices {
				if p.Visible(idx) {
					shown++
				}
			}
			cells = append(cells, Cell{Building: e.Building, Accent: e.Building.Accent(), Shown: shown})
		}
		out[i] = cells
	}
	return out
}
