// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCompletedEvent is published when a group booking reaches COMPLETED.
// The notification service consumes it to send the confirmation email, so it
// carries everything needed to render the message without querying the
// primary database.
type BookingCompletedEvent struct {
	BookingID    uint64   `json:"booking_id"`
	OperatorID   uint64   `json:"operator_id"`
	CustomerName string   `json:"customer_name"`
	ServiceType  string   `json:"service_type"`
	GuestCount   int      `json:"guest_count"`
	ShowtimeID   uint64   `json:"showtime_id,omitempty"`
	RoomName     string   `json:"room_name,omitempty"`
	EventTitle   string   `json:"event_title,omitempty"`
	StartsAt     string   `json:"starts_at,omitempty"`
	EndsAt       string   `json:"ends_at,omitempty"`
	SeatLabels   []string `json:"seats"`
	PriceCents   uint32   `json:"price_cents"`
	CompletedAt  string   `json:"completed_at"`
}
