package utils

import (
	"admitgate/src/config"
	"admitgate/src/models"
	"admitgate/src/types"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// HashPrefixLength is the number of signature hex chars carried in a QR code.
const HashPrefixLength = 16

var compactFields = []string{"id", "bid", "eid", "email", "hash", "issued"}

// CompactToken is the decoded QR wire payload.
type CompactToken struct {
	TicketID  string    `json:"id"`
	BookingID string    `json:"bid"`
	EventID   string    `json:"eid"`
	UserEmail string    `json:"email"`
	Hash      string    `json:"hash"`
	Issued    string    `json:"issued"`
	IssuedAt  time.Time `json:"-"`
}

// Sign computes the HMAC-SHA256 of the pipe-joined immutable ticket fields.
func Sign(secret []byte, ticketID, bookingID, eventID, userEmail, eventDate string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join([]string{ticketID, bookingID, eventID, userEmail, eventDate}, "|")))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPrefix recomputes the signature and compares its prefix against the
// candidate in constant time.
func VerifyPrefix(secret []byte, candidate, ticketID, bookingID, eventID, userEmail, eventDate string) bool {
	expected := Sign(secret, ticketID, bookingID, eventID, userEmail, eventDate)[:HashPrefixLength]
	return subtle.ConstantTimeCompare([]byte(expected), []byte(candidate)) == 1
}

func EncodeCompact(ticket *models.Ticket) string {
	hash := ticket.Signature
	if len(hash) > HashPrefixLength {
		hash = hash[:HashPrefixLength]
	}
	token := CompactToken{
		TicketID:  ticket.ID,
		BookingID: ticket.BookingID,
		EventID:   ticket.EventID,
		UserEmail: ticket.UserEmail,
		Hash:      hash,
		Issued:    ticket.IssuedAt.UTC().Format(config.ISSUED_AT_FORMAT),
	}
	b, _ := json.Marshal(&token)
	return string(b)
}

// DecodeCompact parses a scanned payload. Every field is required and must be
// a non-empty string.
func DecodeCompact(wire string) (*CompactToken, error) {
	wire = strings.TrimSpace(wire)
	if !gjson.Valid(wire) || !gjson.Parse(wire).IsObject() {
		return nil, types.ErrMalformedPayload
	}
	values := gjson.GetMany(wire, compactFields...)
	for i, v := range values {
		if v.Type != gjson.String || v.Str == "" {
			return nil, fmt.Errorf("%w: field %q missing", types.ErrMalformedPayload, compactFields[i])
		}
	}
	issuedAt, err := time.Parse(time.RFC3339, values[5].Str)
	if err != nil {
		return nil, fmt.Errorf("%w: issued: %s", types.ErrMalformedPayload, err.Error())
	}
	return &CompactToken{
		TicketID:  values[0].Str,
		BookingID: values[1].Str,
		EventID:   values[2].Str,
		UserEmail: values[3].Str,
		Hash:      values[4].Str,
		Issued:    values[5].Str,
		IssuedAt:  issuedAt,
	}, nil
}
