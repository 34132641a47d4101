package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeRow builds a row with seats numbered 1..total; unavailable lists the
// seat numbers that are taken. Seat IDs are rowBase+number so every seat in
// the room gets a distinct id.
func makeRow(label string, rowBase uint64, total int, unavailable ...uint32) SeatRow {
	taken := make(map[uint32]bool, len(unavailable))
	for _, n := range unavailable {
		taken[n] = true
	}
	row := SeatRow{Label: label, TotalSeats: total}
	for n := 1; n <= total; n++ {
		row.Seats = append(row.Seats, Seat{
			ID:         rowBase + uint64(n),
			RowLabel:   label,
			SeatNumber: uint32(n),
			Available:  !taken[uint32(n)],
			SeatType:   "STANDARD",
		})
	}
	return row
}

func TestAutoSelectCentersPartyInMiddleRow(t *testing.T) {
	// Rows A-E with 10 seats each, all available. The middle row of the
	// sorted labels is C; four seats come from its center: numbers 4-7.
	rows := []SeatRow{
		makeRow("A", 100, 10),
		makeRow("B", 200, 10),
		makeRow("C", 300, 10),
		makeRow("D", 400, 10),
		makeRow("E", 500, 10),
	}
	alloc, err := AutoSelect(rows, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, alloc.Rows)
	assert.Equal(t, []uint64{304, 305, 306, 307}, alloc.SeatIDs)
}

func TestAutoSelectSoundness(t *testing.T) {
	rows := []SeatRow{
		makeRow("A", 100, 8, 1, 2),
		makeRow("B", 200, 8, 4),
		makeRow("C", 300, 8, 3, 6),
	}
	available := make(map[uint64]bool)
	for _, row := range rows {
		for _, s := range row.Seats {
			if s.Available {
				available[s.ID] = true
			}
		}
	}

	alloc, err := AutoSelect(rows, 5)
	require.NoError(t, err)
	assert.Len(t, alloc.SeatIDs, 5, "a success returns exactly guestCount seats")
	seen := make(map[uint64]bool)
	for _, id := range alloc.SeatIDs {
		assert.True(t, available[id], "seat %d was not available in the input", id)
		assert.False(t, seen[id], "seat %d returned twice", id)
		seen[id] = true
	}
}

func TestAutoSelectInsufficientSeats(t *testing.T) {
	rows := []SeatRow{
		makeRow("A", 100, 4, 1, 2, 3),
		makeRow("B", 200, 4, 2, 3, 4),
	}
	_, err := AutoSelect(rows, 3)
	require.Error(t, err)
	assert.Equal(t, InsufficientSeats, KindOf(err))
}

func TestAutoSelectRefusesScatteredAllocation(t *testing.T) {
	// Ten seats are available in aggregate but every run is a single seat.
	// The allocator must fail rather than scatter the party.
	rows := []SeatRow{
		makeRow("A", 100, 10, 2, 4, 6, 8, 10),
		makeRow("B", 200, 10, 1, 3, 5, 7, 9),
	}
	_, err := AutoSelect(rows, 2)
	require.Error(t, err)
	assert.Equal(t, NoContiguousAllocation, KindOf(err), "aggregate availability must not override the contiguity policy")

	// Mixed fragmentation: row A holds one pair plus singles, row B only
	// singles. Six seats available for a party of four, but the usable
	// blocks sum to two.
	rows = []SeatRow{
		makeRow("A", 100, 8, 3, 5, 6, 8),
		makeRow("B", 200, 8, 1, 3, 5, 6, 8),
	}
	_, err = AutoSelect(rows, 4)
	require.Error(t, err)
	assert.Equal(t, NoContiguousAllocation, KindOf(err))
}

func TestAutoSelectSeatsPartyOfOneOnIsolatedSeat(t *testing.T) {
	// Only isolated singles remain: seats 2, 5 and 8. A single guest gets
	// the most central one; a pair still has no block to sit in.
	rows := []SeatRow{makeRow("C", 300, 10, 1, 3, 4, 6, 7, 9, 10)}

	alloc, err := AutoSelect(rows, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{305}, alloc.SeatIDs)
	assert.Equal(t, []string{"C"}, alloc.Rows)

	_, err = AutoSelect(rows, 2)
	require.Error(t, err)
	assert.Equal(t, NoContiguousAllocation, KindOf(err))
}

func TestAutoSelectCombinesBlocksAcrossRows(t *testing.T) {
	// Each row can seat only two together, so a party of three spans the
	// midpoint row and its better-ranked neighbour.
	rows := []SeatRow{
		makeRow("A", 100, 4, 3, 4),
		makeRow("B", 200, 4, 1, 2),
	}
	alloc, err := AutoSelect(rows, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, alloc.Rows)
	assert.ElementsMatch(t, []uint64{203, 204, 101}, alloc.SeatIDs)
}

func TestAutoSelectPrefersLongestThenMostCentralRun(t *testing.T) {
	// One row, runs of length 3 (seats 1-3) and 3 (seats 8-10) after the
	// middle seats are taken. Equal length: |2-5.5| equals |9-5.5|, so the
	// earlier run is kept by the stable order.
	row := makeRow("A", 100, 10, 4, 5, 6, 7)
	alloc, err := AutoSelect([]SeatRow{row}, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint64{101, 102}, alloc.SeatIDs)

	// Runs of 2, 3 and 3: the central length-3 run (seats 4-6) beats both
	// the shorter pair and the off-center triple.
	row = makeRow("A", 100, 10, 3, 7)
	alloc, err = AutoSelect([]SeatRow{row}, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{104, 105, 106}, alloc.SeatIDs)
}

func TestAutoSelectSpillsToAdjacentRankedRow(t *testing.T) {
	// Row C can seat only two together; the remaining two come from the
	// next-ranked row (B, the alphabetically earlier neighbour of C).
	rows := []SeatRow{
		makeRow("A", 100, 6),
		makeRow("B", 200, 6),
		makeRow("C", 300, 6, 1, 2, 5, 6),
		makeRow("D", 400, 6),
		makeRow("E", 500, 6),
	}
	alloc, err := AutoSelect(rows, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "B"}, alloc.Rows)
	assert.Equal(t, []uint64{303, 304}, alloc.SeatIDs[:2])
	assert.Len(t, alloc.SeatIDs, 4)
}

func TestAutoSelectRowTieBreaksAlphabetically(t *testing.T) {
	// Five rows, midpoint C. With C full, B and D are both at distance 1;
	// the alphabetically earlier row must win through the index tie break.
	rows := []SeatRow{
		makeRow("A", 100, 4),
		makeRow("B", 200, 4),
		makeRow("C", 300, 4, 1, 2, 3, 4),
		makeRow("D", 400, 4),
		makeRow("E", 500, 4),
	}
	alloc, err := AutoSelect(rows, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, alloc.Rows)

	// Rows arriving out of order rank over the sorted label list, so the
	// result is the same.
	rows = []SeatRow{
		makeRow("E", 500, 4),
		makeRow("C", 300, 4, 1, 2, 3, 4),
		makeRow("A", 100, 4),
		makeRow("D", 400, 4),
		makeRow("B", 200, 4),
	}
	alloc, err = AutoSelect(rows, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, alloc.Rows)
}

func TestSelectionCapAndToggle(t *testing.T) {
	sel := NewSelection(2)
	require.NoError(t, sel.Toggle(11))
	require.NoError(t, sel.Toggle(12))
	assert.Equal(t, 2, sel.Count())

	err := sel.Toggle(13)
	require.Error(t, err)
	assert.Equal(t, CapacityReached, KindOf(err))
	assert.Equal(t, 2, sel.Count(), "a refused toggle must be a no-op")

	// Toggling a selected seat removes it and frees capacity.
	require.NoError(t, sel.Toggle(11))
	assert.False(t, sel.Contains(11))
	require.NoError(t, sel.Toggle(13))
	assert.Equal(t, []uint64{12, 13}, sel.SeatIDs())
}

func TestSelectionCapHoldsUnderAnyToggleSequence(t *testing.T) {
	sel := NewSelection(3)
	seq := []uint64{1, 2, 3, 4, 2, 4, 5, 1, 1, 6, 3, 7}
	for _, id := range seq {
		_ = sel.Toggle(id)
		assert.LessOrEqual(t, sel.Count(), 3)
	}
}

func TestSelectionTwoPhaseLoad(t *testing.T) {
	sel := NewSelection(4)
	require.NoError(t, sel.Toggle(21))

	// Loading a committed proposal keeps the operator's in-flight pick.
	sel.LoadProposal([]uint64{22, 23})
	assert.ElementsMatch(t, []uint64{21, 22, 23}, sel.SeatIDs())

	// Reloading the same proposal is idempotent.
	sel.LoadProposal([]uint64{22, 23})
	assert.Equal(t, 3, sel.Count())

	// A fresh load clears everything.
	sel.LoadFresh()
	assert.Equal(t, 0, sel.Count())

	// LoadProposal never exceeds the cap.
	sel.LoadFresh()
	sel.LoadProposal([]uint64{1, 2, 3, 4, 5, 6})
	assert.Equal(t, 4, sel.Count())
}
