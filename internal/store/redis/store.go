package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"

	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/store"

	"github.com/redis/go-redis/v9"
)

// Store is the key-value backend: one hash per session date holding JSON
// tickets, an INCR counter per date for call-code sequences, and a pub/sub
// channel per date so watchers can run in push mode instead of polling.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func ticketsKey(sessionDate string) string { return "fila:tickets:" + sessionDate }
func seqKey(sessionDate string) string     { return "fila:seq:" + sessionDate }
func changesKey(sessionDate string) string { return "fila:changes:" + sessionDate }

const usersKey = "fila:users"

func (s *Store) GetTickets(ctx context.Context, sessionDate string) ([]models.Ticket, error) {
	raw, err := s.client.HGetAll(ctx, ticketsKey(sessionDate)).Result()
	if err != nil {
		return nil, err
	}
	tickets := make([]models.Ticket, 0, len(raw))
	for _, value := range raw {
		var t models.Ticket
		if err := json.Unmarshal([]byte(value), &t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		if !tickets[i].ArrivalTime.Equal(tickets[j].ArrivalTime) {
			return tickets[i].ArrivalTime.Before(tickets[j].ArrivalTime)
		}
		return tickets[i].TicketID < tickets[j].TicketID
	})
	return tickets, nil
}

func (s *Store) AddTicket(ctx context.Context, sessionDate string, t models.Ticket) error {
	return s.writeTicket(ctx, sessionDate, t)
}

func (s *Store) UpdateTicket(ctx context.Context, sessionDate string, t models.Ticket) error {
	exists, err := s.client.HExists(ctx, ticketsKey(sessionDate), t.TicketID).Result()
	if err != nil {
		return err
	}
	if !exists {
		return store.ErrTicketNotFound
	}
	return s.writeTicket(ctx, sessionDate, t)
}

func (s *Store) writeTicket(ctx context.Context, sessionDate string, t models.Ticket) error {
	encoded, err := json.Marshal(t)
	if err != nil {
		return err
	}
	if err := s.client.HSet(ctx, ticketsKey(sessionDate), t.TicketID, encoded).Err(); err != nil {
		return err
	}
	return s.client.Publish(ctx, changesKey(sessionDate), t.TicketID).Err()
}

func (s *Store) DeleteTicket(ctx context.Context, sessionDate, ticketID string) error {
	removed, err := s.client.HDel(ctx, ticketsKey(sessionDate), ticketID).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return store.ErrTicketNotFound
	}
	return s.client.Publish(ctx, changesKey(sessionDate), ticketID).Err()
}

func (s *Store) NextSequence(ctx context.Context, sessionDate string) (int, error) {
	seq, err := s.client.Incr(ctx, seqKey(sessionDate)).Result()
	return int(seq), err
}

func (s *Store) Changes(ctx context.Context, sessionDate string) (<-chan struct{}, error) {
	sub := s.client.Subscribe(ctx, changesKey(sessionDate))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, user := range users {
		if strings.EqualFold(user.Username, username) {
			return user, nil
		}
	}
	return models.User{}, store.ErrUserNotFound
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	raw, err := s.client.HGetAll(ctx, usersKey).Result()
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(raw))
	for _, value := range raw {
		var user userRecord
		if err := json.Unmarshal([]byte(value), &user); err != nil {
			return nil, err
		}
		users = append(users, user.toModel())
	}
	sort.SliceStable(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].UserID < users[j].UserID
	})
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	if _, err := s.FindByUsername(ctx, user.Username); err == nil {
		return store.ErrUsernameTaken
	} else if !errors.Is(err, store.ErrUserNotFound) {
		return err
	}
	encoded, err := json.Marshal(fromModel(user))
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, usersKey, user.UserID, encoded).Err()
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	removed, err := s.client.HDel(ctx, usersKey, userID).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return store.ErrUserNotFound
	}
	return nil
}
