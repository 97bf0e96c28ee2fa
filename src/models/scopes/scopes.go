package scopes

import "gorm.io/gorm"

func WithID(id string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithBookingID(bookingID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("booking_id = ?", bookingID)
	}
}

func WithTicketID(ticketID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("ticket_id = ?", ticketID)
	}
}

func OldestConsumedFirst(db *gorm.DB) *gorm.DB {
	return db.Order("consumed_at asc")
}
