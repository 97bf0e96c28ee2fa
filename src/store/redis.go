package store

import (
	"admitgate/src/models"
	"admitgate/src/types"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisConsumedSet   = "tickets:consumed"
	redisConsumedAtKey = "tickets:consumed_at"
)

// RedisStore keeps tickets as JSON documents. SADD on the consumed set is the
// atomic primitive: a reply of 1 means this call added the member.
type RedisStore struct {
	rdb *redis.Client
}

// redisTicket carries the signature, which models.Ticket hides from JSON.
type redisTicket struct {
	*models.Ticket
	Signature string `json:"signature"`
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func ticketKey(id string) string {
	return fmt.Sprintf("tickets:%s", id)
}

func bookingKey(bookingID string) string {
	return fmt.Sprintf("tickets:booking:%s", bookingID)
}

func (r *RedisStore) Put(ctx context.Context, ticket *models.Ticket) error {
	doc, err := json.Marshal(&redisTicket{Ticket: ticket, Signature: ticket.Signature})
	if err != nil {
		return err
	}
	ok, err := r.rdb.SetNX(ctx, bookingKey(ticket.BookingID), ticket.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("error indexing Booking [%s]: %w", ticket.BookingID, err)
	}
	if !ok {
		return types.ErrDuplicateBooking
	}
	if err := r.rdb.Set(ctx, ticketKey(ticket.ID), string(doc), 0).Err(); err != nil {
		r.rdb.Del(ctx, bookingKey(ticket.BookingID))
		return fmt.Errorf("error saving Ticket [%s]: %w", ticket.ID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, ticketID string) (*models.Ticket, error) {
	doc, err := r.rdb.Get(ctx, ticketKey(ticketID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	rec := redisTicket{Ticket: &models.Ticket{}}
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("error decoding Ticket [%s]: %w", ticketID, err)
	}
	rec.Ticket.Signature = rec.Signature
	return rec.Ticket, nil
}

func (r *RedisStore) FindByBookingID(ctx context.Context, bookingID string) (*models.Ticket, error) {
	id, err := r.rdb.Get(ctx, bookingKey(bookingID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *RedisStore) TryConsume(ctx context.Context, ticketID string, at time.Time) (types.ConsumeResult, error) {
	var added *redis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		added = pipe.SAdd(ctx, redisConsumedSet, ticketID)
		pipe.HSetNX(ctx, redisConsumedAtKey, ticketID, at.UTC().Format(time.RFC3339Nano))
		return nil
	})
	if err != nil {
		return types.ALREADY_CONSUMED, fmt.Errorf("error consuming Ticket [%s]: %w", ticketID, err)
	}
	if added.Val() == 1 {
		return types.FIRST_CONSUMPTION, nil
	}
	return types.ALREADY_CONSUMED, nil
}

func (r *RedisStore) IsConsumed(ctx context.Context, ticketID string) (bool, error) {
	return r.rdb.SIsMember(ctx, redisConsumedSet, ticketID).Result()
}

func (r *RedisStore) ListConsumed(ctx context.Context) ([]models.ConsumedTicket, error) {
	entries, err := r.rdb.HGetAll(ctx, redisConsumedAtKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.ConsumedTicket, 0, len(entries))
	for id, raw := range entries {
		at, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("error decoding consumption of Ticket [%s]: %w", id, err)
		}
		out = append(out, models.ConsumedTicket{TicketID: id, ConsumedAt: at})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ConsumedAt.Before(out[j].ConsumedAt)
	})
	return out, nil
}
