package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

type Timestamps struct {
	CreatedAt time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type SimpleRequestParams struct {
	ID string `uri:"id" binding:"required"`
}

type IssueTicketRequestBody struct {
	BookingID        string  `json:"bookingId" binding:"required"`
	EventID          string  `json:"eventId" binding:"required"`
	EventTitle       string  `json:"eventTitle" binding:"required"`
	EventDate        string  `json:"eventDate" binding:"required,eventdate"`
	EventTime        string  `json:"eventTime,omitempty"`
	EventLocation    string  `json:"eventLocation,omitempty"`
	UserName         string  `json:"userName" binding:"required"`
	UserEmail        string  `json:"userEmail" binding:"required,email"`
	UserPhone        string  `json:"userPhone,omitempty"`
	TicketQuantity   int     `json:"ticketQuantity" binding:"required,min=1"`
	TotalAmount      float64 `json:"totalAmount"`
	BookingTimestamp string  `json:"bookingTimestamp,omitempty"`
}

type CreateAdmissionRequestBody struct {
	Code  string `json:"code" binding:"required"`
	Email string `json:"email,omitempty" binding:"omitempty,email"`
}

type OwnershipRequestBody struct {
	Code  string `json:"code" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type TicketCodeQuery struct {
	ShareLink bool `form:"share_link"`
}

type DeliveryStatus string

const (
	DELIVERY_PENDING DeliveryStatus = "pending"
	DELIVERY_SENT    DeliveryStatus = "sent"
	DELIVERY_FAILED  DeliveryStatus = "failed"
)

type VerificationStatus string

const (
	VERIFICATION_ADMITTED           VerificationStatus = "admitted"
	VERIFICATION_ALREADY_USED       VerificationStatus = "already-used"
	VERIFICATION_INVALID_FORMAT     VerificationStatus = "invalid-format"
	VERIFICATION_UNKNOWN            VerificationStatus = "unknown"
	VERIFICATION_INVALID_SIGNATURE  VerificationStatus = "invalid-signature"
	VERIFICATION_EXPIRED            VerificationStatus = "expired"
	VERIFICATION_WRONG_DAY          VerificationStatus = "wrong-day"
	VERIFICATION_OWNERSHIP_MISMATCH VerificationStatus = "ownership-mismatch"
	VERIFICATION_UNAVAILABLE        VerificationStatus = "unavailable"
)

type ConsumeResult int

const (
	FIRST_CONSUMPTION ConsumeResult = iota
	ALREADY_CONSUMED
)

// TicketInfo is only attached to admitted and already-used results.
type TicketInfo struct {
	TicketID   string `json:"ticketId"`
	EventTitle string `json:"eventTitle"`
	UserName   string `json:"userName"`
	UserEmail  string `json:"userEmail"`
	EventDate  string `json:"eventDate"`
	IsUsed     bool   `json:"isUsed"`
}

type VerificationResult struct {
	IsValid    bool               `json:"isValid"`
	Status     VerificationStatus `json:"status"`
	Reason     string             `json:"reason,omitempty"`
	TicketInfo *TicketInfo        `json:"ticketInfo,omitempty"`
}

// Err maps a rejected result back to its sentinel error. Admitted results
// return nil.
func (r VerificationResult) Err() error {
	switch r.Status {
	case VERIFICATION_ADMITTED:
		return nil
	case VERIFICATION_ALREADY_USED:
		return ErrAlreadyUsed
	case VERIFICATION_INVALID_FORMAT:
		return ErrMalformedPayload
	case VERIFICATION_UNKNOWN:
		return ErrUnknownTicket
	case VERIFICATION_INVALID_SIGNATURE:
		return ErrInvalidSignature
	case VERIFICATION_EXPIRED:
		return ErrExpired
	case VERIFICATION_WRONG_DAY:
		return ErrWrongDay
	case VERIFICATION_OWNERSHIP_MISMATCH:
		return ErrOwnershipMismatch
	default:
		return ErrStoreUnavailable
	}
}
