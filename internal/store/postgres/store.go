package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"fila/queue-manager/internal/models"
	"fila/queue-manager/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetTickets(ctx context.Context, sessionDate string) ([]models.Ticket, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ticket_id, password, customer_name, order_number, client_type, vehicle_type,
			priority, status, session_date, arrival_time,
			separation_start_time, separation_end_time, call_time, finish_time
		FROM tickets
		WHERE session_date = $1
		ORDER BY arrival_time, ticket_id
	`, sessionDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []models.Ticket{}
	for rows.Next() {
		var t models.Ticket
		var sepStart, sepEnd, called, finished sql.NullTime
		if err := rows.Scan(
			&t.TicketID, &t.Password, &t.CustomerName, &t.OrderNumber, &t.ClientType, &t.VehicleType,
			&t.Priority, &t.Status, &t.SessionDate, &t.ArrivalTime,
			&sepStart, &sepEnd, &called, &finished,
		); err != nil {
			return nil, err
		}
		t.SeparationStartTime = timePtr(sepStart)
		t.SeparationEndTime = timePtr(sepEnd)
		t.CallTime = timePtr(called)
		t.FinishTime = timePtr(finished)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (s *Store) AddTicket(ctx context.Context, sessionDate string, t models.Ticket) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tickets (
			ticket_id, password, customer_name, order_number, client_type, vehicle_type,
			priority, status, session_date, arrival_time,
			separation_start_time, separation_end_time, call_time, finish_time
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, t.TicketID, t.Password, t.CustomerName, t.OrderNumber, t.ClientType, t.VehicleType,
		t.Priority, t.Status, sessionDate, t.ArrivalTime,
		t.SeparationStartTime, t.SeparationEndTime, t.CallTime, t.FinishTime)
	return err
}

func (s *Store) UpdateTicket(ctx context.Context, sessionDate string, t models.Ticket) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE tickets SET
			status = $1,
			separation_start_time = $2,
			separation_end_time = $3,
			call_time = $4,
			finish_time = $5
		WHERE session_date = $6 AND ticket_id = $7
	`, t.Status, t.SeparationStartTime, t.SeparationEndTime, t.CallTime, t.FinishTime,
		sessionDate, t.TicketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrTicketNotFound
	}
	return nil
}

func (s *Store) DeleteTicket(ctx context.Context, sessionDate, ticketID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tickets WHERE session_date = $1 AND ticket_id = $2`, sessionDate, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrTicketNotFound
	}
	return nil
}

// NextSequence hands out session-scoped call-code numbers from a counter
// row, so concurrent reception desks never mint the same password.
func (s *Store) NextSequence(ctx context.Context, sessionDate string) (int, error) {
	var seq int
	err := s.pool.QueryRow(ctx, `
		INSERT INTO session_counters (session_date, seq) VALUES ($1, 1)
		ON CONFLICT (session_date) DO UPDATE SET seq = session_counters.seq + 1
		RETURNING seq
	`, sessionDate).Scan(&seq)
	return seq, err
}

func (s *Store) Changes(ctx context.Context, sessionDate string) (<-chan struct{}, error) {
	return nil, store.ErrNoSubscribe
}

func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, username, password_hash, role, name, created_at
		FROM users WHERE UPPER(username) = $1
	`, strings.ToUpper(username)).Scan(
		&user.UserID, &user.Username, &user.PasswordHash, &user.Role, &user.Name, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, store.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, username, password_hash, role, name, created_at
		FROM users ORDER BY created_at, user_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.UserID, &user.Username, &user.PasswordHash, &user.Role, &user.Name, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO users (user_id, username, password_hash, role, name, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT DO NOTHING
	`, user.UserID, user.Username, user.PasswordHash, user.Role, user.Name, user.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUsernameTaken
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}
