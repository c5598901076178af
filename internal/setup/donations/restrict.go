package donations

// Result holds the blocked donation spaces and the blocked city spaces.
type Result struct {
	// Grid is indexed [row][col].
	Grid   [GridRows][GridCols]bool `json:"grid"`
	Cities map[City]int             `json:"cities"`
}

// Blocked is a city with the number of its spaces taken by disks.
type Blocked struct {
	City   City   `json:"city"`
	Count  int    `json:"count"`
	Region Region `json:"region"`
}

// Restrict walks the cards in order spending one disk per newly blocked donation
// space and one per city space until budget is exhausted. A zero budget blocks
// nothing.
func Restrict(deck []Card, budget uint32) Result {
	res := Result{Cities: map[City]int{}}
	if budget == 0 {
		return res
	}
	for _, card := range deck {
		col, row := card.Cell()
		if !res.Grid[row][col] {
			res.Grid[row][col] = true
			budget--
			if budget == 0 {
				return res
			}
		}
		for _, c := range card.Cities() {
			if res.Cities[c] < c.Spaces() {
				res.Cities[c]++
				budget--
				if budget == 0 {
					return res
				}
			}
		}
	}
	return res
}

// Blocked lists blocked cities in enumeration order.
func (r Result) Blocked() []Blocked {
	out := make([]Blocked, 0, len(r.Cities))
	for _, c := range Cities() {
		if n := r.Cities[c]; n > 0 {
			out = append(out, Blocked{City: c, Count: n, Region: c.Region()})
		}
	}
	return out
}

// Consumed counts disks on donation spaces and on cities.
func (r Result) Consumed() (donations, cities int) {
	for _, row := range r.Grid {
		for _, b := range row {
			if b {
				donations++
			}
		}
	}
	for _, n := range r.Cities {
		cities += n
	}
	return donations, cities
}

func (r Result) Empty() bool {
	d, c := r.Consumed()
	return d == 0 && c == 0
}
