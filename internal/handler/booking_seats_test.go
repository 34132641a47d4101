package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkhang692004/cinema-ops-console/internal/repository"
)

func seatStatus(id uint64, row string, num uint32, available bool) repository.SeatStatus {
	return repository.SeatStatus{
		SeatRecord: repository.SeatRecord{
			ID:         id,
			RowLabel:   row,
			SeatNumber: num,
			SeatType:   "STANDARD",
			IsActive:   true,
		},
		Available: available,
	}
}

func TestBuildRowsGroupsByLabelAndCountsAllSeats(t *testing.T) {
	statuses := []repository.SeatStatus{
		seatStatus(1, "A", 1, true),
		seatStatus(2, "A", 2, false),
		seatStatus(3, "A", 3, true),
		seatStatus(4, "B", 1, true),
		seatStatus(5, "B", 2, true),
	}

	rows := buildRows(statuses)
	require.Len(t, rows, 2)

	assert.Equal(t, "A", rows[0].Label)
	assert.Equal(t, 3, rows[0].TotalSeats)
	require.Len(t, rows[0].Seats, 3)
	// TotalSeats counts unavailable seats too, availability rides on each seat.
	assert.False(t, rows[0].Seats[1].Available)

	assert.Equal(t, "B", rows[1].Label)
	assert.Equal(t, 2, rows[1].TotalSeats)
}

func TestBuildRowsEmptyInput(t *testing.T) {
	assert.Empty(t, buildRows(nil))
}
