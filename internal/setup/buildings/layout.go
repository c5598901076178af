package buildings

import "sort"

// Entry is a distinct value within a row and the insertion indices of its copies.
type Entry struct {
	Building Building `json:"building"`
	Indices  []uint32 `json:"indices"`
}

// Row holds the entries of one board row, ordered by building value.
type Row struct {
	Entries []Entry `json:"entries"`
}

// Layout is the result of a placement pass.
type Layout struct {
	Rows   [Rows]Row `json:"rows"`
	Placed int       `json:"placed"`
}

func (r Row) Len() int {
	n := 0
	for _, e := range r.Entries {
		n += len(e.Indices)
	}
	return n
}

func (r Row) Distinct() int { return len(r.Entries) }

func (r Row) Accents() int {
	n := 0
	for _, e := range r.Entries {
		if e.Building.Accent() {
			n++
		}
	}
	return n
}

func (r Row) Lookup(b Building) (Entry, bool) {
	i := sort.Search(len(r.Entries), func(i int) bool { return r.Entries[i].Building >= b })
	if i < len(r.Entries) && r.Entries[i].Building == b {
		return r.Entries[i], true
	}
	return Entry{}, false
}

// rowState tracks a row during the pass.
type rowState struct {
	indices map[Building][]uint32
	slots   int
	accents int
}

// reserved is the slot count the row would reach once the permanent minimum is
// honoured. Each distinct permanent value already placed counts toward it once.
func (r *rowState) reserved(pmin int) int { return r.slots - r.accents + pmin }

// Place assigns the tokens of deck, in order, to rows. It is a single greedy pass
// that reserves room for the per-row permanent minimum.
func Place(deck []Building, opts Options) Layout {
	limit := int(opts.Limit)
	pmin, pmax := opts.Permanent.Min(), opts.Permanent.Max()

	var rows [Rows]rowState
	for i := range rows {
		rows[i].indices = map[Building][]uint32{}
	}

	count := 0
	missing := pmin * Rows
	for _, b := range deck {
		if !b.In(opts.Tiles) {
			continue
		}
		row := &rows[b.Row()]
		if row.slots >= RowSlots {
			continue
		}

		if idx, ok := row.indices[b]; ok {
			if count == Placed-missing {
				continue
			}
			if row.reserved(pmin) >= RowSlots {
				continue
			}
			row.indices[b] = append(idx, uint32(count))
		} else {
			distinct := len(row.indices)
			if distinct == limit {
				continue
			}
			accent := b.Accent()
			if accent {
				if row.accents == pmax {
					continue
				}
				if row.accents < pmin && missing > 0 {
					missing--
				}
			} else {
				if count == Placed-missing {
					continue
				}
				if distinct-row.accents+pmin >= limit {
					continue
				}
				if row.reserved(pmin) >= RowSlots {
					continue
				}
			}
			row.indices[b] = []uint32{uint32(count)}
			if accent {
				row.accents++
			}
		}

		row.slots++
		count++
		if count == Placed {
			break
		}
	}

	var out Layout
	out.Placed = count
	for i := range rows {
		out.Rows[i] = rows[i].freeze()
	}
	return out
}

func (r *rowState) freeze() Row {
	entries := make([]Entry, 0, len(r.indices))
	for b, idx := range r.indices {
		entries = append(entries, Entry{Building: b, Indices: idx})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Building < entries[j].Building })
	return Row{Entries: entries}
}
