package models

// Booking is produced by the external booking workflow and never modified here.
type Booking struct {
	BookingID        string  `json:"bookingId"`
	EventID          string  `json:"eventId"`
	EventTitle       string  `json:"eventTitle"`
	EventDate        string  `json:"eventDate"`
	EventTime        string  `json:"eventTime,omitempty"`
	EventLocation    string  `json:"eventLocation,omitempty"`
	UserName         string  `json:"userName"`
	UserEmail        string  `json:"userEmail"`
	UserPhone        string  `json:"userPhone,omitempty"`
	TicketQuantity   int     `json:"ticketQuantity"`
	TotalAmount      float64 `json:"totalAmount"`
	BookingTimestamp string  `json:"bookingTimestamp,omitempty"`
}
