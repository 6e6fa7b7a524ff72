package pg

import (
	"bitbucket.org/sotavant/quick-swapp/internal/models"
	"bitbucket.org/sotavant/quick-swapp/internal/store"
	"context"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	sender_id       TEXT NOT NULL,
	receiver_id     TEXT NOT NULL,
	item_id         TEXT NOT NULL DEFAULT '',
	message         TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS messages_conversation_id_idx ON messages (conversation_id, created_at);
CREATE INDEX IF NOT EXISTS messages_sender_id_idx ON messages (sender_id);
CREATE INDEX IF NOT EXISTS messages_receiver_id_idx ON messages (receiver_id);
`

const columns = `id, conversation_id, sender_id, receiver_id, item_id, message, created_at`

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURI string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURI)
	if err != nil {
		return nil, errors.Wrap(err, "connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Bootstrap(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return errors.Wrap(err, "create messages schema")
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) FindConversation(ctx context.Context, a, b models.UserID, item models.ItemID) (models.ConversationID, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT conversation_id FROM messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND item_id = $3
		ORDER BY created_at ASC
		LIMIT 1`, string(a), string(b), string(item))

	var conv string
	if err := row.Scan(&conv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", store.ErrNotFound
		}
		return "", errors.Wrap(err, "find conversation")
	}
	return models.ConversationID(conv), nil
}

func (s *Store) ListMessages(ctx context.Context, userID models.UserID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+columns+` FROM messages
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC`, string(userID))
	if err != nil {
		return nil, errors.Wrap(err, "list messages")
	}
	return collect(rows)
}

func (s *Store) ListConversationMessages(ctx context.Context, conv models.ConversationID, userID models.UserID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+columns+` FROM messages
		WHERE conversation_id = $1 AND (sender_id = $2 OR receiver_id = $2)
		ORDER BY created_at ASC`, string(conv), string(userID))
	if err != nil {
		return nil, errors.Wrap(err, "list conversation messages")
	}
	return collect(rows)
}

func (s *Store) SaveMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	msg.ID = uuid.NewString()
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, receiver_id, item_id, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		msg.ID, string(msg.ConversationID), string(msg.SenderID), string(msg.ReceiverID), string(msg.ItemID), msg.Body,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return models.Message{}, errors.Wrap(err, "save message")
	}
	return msg, nil
}

func collect(rows pgx.Rows) ([]models.Message, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Message, error) {
		var m models.Message
		var conv, sender, recv, item string
		err := row.Scan(&m.ID, &conv, &sender, &recv, &item, &m.Body, &m.CreatedAt)
		m.ConversationID = models.ConversationID(conv)
		m.SenderID = models.UserID(sender)
		m.ReceiverID = models.UserID(recv)
		m.ItemID = models.ItemID(item)
		return m, err
	})
	if err != nil {
		return nil, errors.Wrap(err, "scan messages")
	}
	return out, nil
}
