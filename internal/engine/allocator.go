package engine

import "sort"

// Seat is the allocator's read-only view of one seat in the map fetched for
// a showtime. Available reflects the ledger as of the fetch; the allocator
// never mutates it, it only proposes a subset.
type Seat struct {
	ID         uint64
	RowLabel   string
	SeatNumber uint32
	Available  bool
	SeatType   string
}

// SeatRow is one row of the seat map, keyed by its letter label. TotalSeats
// is the physical seat count of the row (not just the available seats); the
// run ranking centers runs against it.
type SeatRow struct {
	Label      string
	TotalSeats int
	Seats      []Seat
}

// Allocation is a successful auto-selection: the chosen seat IDs plus the
// distinct row labels touched, for operator feedback ("assigned rows D, E").
type Allocation struct {
	SeatIDs []uint64
	Rows    []string
}

// AutoSelect proposes guestCount seats from the given rows, preferring rows
// near the vertical middle of the room and contiguous blocks near the middle
// of each row. It fails with InsufficientSeats when availability is short in
// aggregate, and with NoContiguousAllocation when availability is sufficient
// but too fragmented: isolated single seats are never part of a proposal
// unless the party itself is one, partial contiguity beats raw count
// satisfaction.
func AutoSelect(rows []SeatRow, guestCount int) (*Allocation, error) {
	if guestCount <= 0 {
		return nil, newFieldError(InsufficientSeats, "guest_count", "party size must be positive")
	}

	totalAvailable := 0
	for _, row := range rows {
		for _, s := range row.Seats {
			if s.Available {
				totalAvailable++
			}
		}
	}
	if totalAvailable < guestCount {
		return nil, newError(InsufficientSeats,
			"only %d seats available for a party of %d", totalAvailable, guestCount)
	}

	ranked := rankRows(rows)

	// A party of one may sit on an isolated seat; larger parties are built
	// from blocks only.
	minRun := 2
	if guestCount == 1 {
		minRun = 1
	}

	picked := make([]uint64, 0, guestCount)
	rowLabels := make([]string, 0, 2)
	for _, row := range ranked {
		if len(picked) == guestCount {
			break
		}
		ids := pickFromRow(row, guestCount-len(picked), minRun)
		if len(ids) > 0 {
			picked = append(picked, ids...)
			rowLabels = append(rowLabels, row.Label)
		}
	}

	if len(picked) < guestCount {
		// The aggregate check passed but the runs were too fragmented.
		return nil, newError(NoContiguousAllocation,
			"no contiguous block of seats can host a party of %d", guestCount)
	}
	return &Allocation{SeatIDs: picked, Rows: rowLabels}, nil
}

// rankRows orders rows by distance from the middle row of the sorted label
// list. Ties go to the alphabetically earlier row; the tuple sort keeps that
// behavior explicit instead of leaning on sort stability.
func rankRows(rows []SeatRow) []SeatRow {
	sorted := make([]SeatRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })

	mid := len(sorted) / 2
	type rankedRow struct {
		row      SeatRow
		distance int
		index    int
	}
	ranked := make([]rankedRow, len(sorted))
	for i, row := range sorted {
		d := i - mid
		if d < 0 {
			d = -d
		}
		ranked[i] = rankedRow{row: row, distance: d, index: i}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].distance != ranked[j].distance {
			return ranked[i].distance < ranked[j].distance
		}
		return ranked[i].index < ranked[j].index
	})

	out := make([]SeatRow, len(ranked))
	for i, r := range ranked {
		out[i] = r.row
	}
	return out
}

// seatRun is a maximal block of available seats with consecutive numbers
// within one row.
type seatRun struct {
	seats []Seat
}

// pickFromRow takes up to needed seats out of one row, walking its runs from
// best to worst. Returns the chosen seat IDs; fewer than needed when the row
// runs out of runs.
func pickFromRow(row SeatRow, needed, minRun int) []uint64 {
	runs := availableRuns(row.Seats)
	if len(runs) == 0 {
		return nil
	}
	orderRuns(runs, row.TotalSeats)

	out := make([]uint64, 0, needed)
	for _, run := range runs {
		if needed == 0 {
			break
		}
		// Runs below minRun are never auto-assigned; a proposal is built
		// from blocks, not scattered leftovers.
		if len(run.seats) < minRun {
			continue
		}
		k := len(run.seats)
		if k > needed {
			k = needed
		}
		// Take k of n seats from the run's center outward: skip
		// floor((n-k)/2) from the start, then take k contiguously.
		start := (len(run.seats) - k) / 2
		for _, s := range run.seats[start : start+k] {
			out = append(out, s.ID)
		}
		needed -= k
	}
	return out
}

// availableRuns partitions the row's available seats, sorted by seat number,
// into maximal runs of consecutive numbers.
func availableRuns(seats []Seat) []seatRun {
	avail := make([]Seat, 0, len(seats))
	for _, s := range seats {
		if s.Available {
			avail = append(avail, s)
		}
	}
	sort.Slice(avail, func(i, j int) bool { return avail[i].SeatNumber < avail[j].SeatNumber })

	var runs []seatRun
	for i := 0; i < len(avail); {
		j := i + 1
		for j < len(avail) && avail[j].SeatNumber == avail[j-1].SeatNumber+1 {
			j++
		}
		runs = append(runs, seatRun{seats: avail[i:j]})
		i = j
	}
	return runs
}

// orderRuns ranks runs by length descending, then by how close the run's
// midpoint sits to the middle of the full row. Remaining ties keep the
// original left-to-right order.
func orderRuns(runs []seatRun, totalSeats int) {
	rowMid := float64(totalSeats+1) / 2.0
	center := func(r seatRun) float64 {
		first := float64(r.seats[0].SeatNumber)
		last := float64(r.seats[len(r.seats)-1].SeatNumber)
		d := (first+last)/2.0 - rowMid
		if d < 0 {
			d = -d
		}
		return d
	}
	sort.SliceStable(runs, func(i, j int) bool {
		if len(runs[i].seats) != len(runs[j].seats) {
			return len(runs[i].seats) > len(runs[j].seats)
		}
		return center(runs[i]) < center(runs[j])
	})
}

// Selection tracks a manually built seat set for one booking. It enforces
// the |seats| <= guest_count cap on every toggle; ordering of manual picks
// is not constrained.
type Selection struct {
	guestCount int
	seats      map[uint64]struct{}
	order      []uint64
}

// NewSelection returns an empty selection capped at guestCount seats.
func NewSelection(guestCount int) *Selection {
	return &Selection{guestCount: guestCount, seats: make(map[uint64]struct{})}
}

// LoadProposal seeds the selection with an already-committed seat set, e.g.
// when an operator reopens a booking that holds a proposal. Existing picks
// are kept; this is the "don't clobber the selection on reload" path.
func (s *Selection) LoadProposal(seatIDs []uint64) {
	for _, id := range seatIDs {
		if id == 0 {
			continue
		}
		if _, ok := s.seats[id]; ok {
			continue
		}
		if len(s.order) >= s.guestCount {
			break
		}
		s.seats[id] = struct{}{}
		s.order = append(s.order, id)
	}
}

// LoadFresh clears the selection. Used when the seat-map dependencies change
// (new showtime, new date) and any prior picks are meaningless.
func (s *Selection) LoadFresh() {
	s.seats = make(map[uint64]struct{})
	s.order = s.order[:0]
}

// Toggle adds the seat when absent and removes it when present. Adding past
// the guest count fails with CapacityReached and leaves the set unchanged.
func (s *Selection) Toggle(seatID uint64) error {
	if _, ok := s.seats[seatID]; ok {
		delete(s.seats, seatID)
		for i, id := range s.order {
			if id == seatID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		return nil
	}
	if len(s.order) >= s.guestCount {
		return newFieldError(CapacityReached, "reserved_seat_ids",
			"capacity reached: party of %d already has %d seats selected",
			s.guestCount, len(s.order))
	}
	s.seats[seatID] = struct{}{}
	s.order = append(s.order, seatID)
	return nil
}

// Contains reports whether the seat is currently selected.
func (s *Selection) Contains(seatID uint64) bool {
	_, ok := s.seats[seatID]
	return ok
}

// Count returns the number of selected seats.
func (s *Selection) Count() int { return len(s.order) }

// SeatIDs returns the selected seats in pick order.
func (s *Selection) SeatIDs() []uint64 {
	out := make([]uint64, len(s.order))
	copy(out, s.order)
	return out
}
