package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/saomyaraj/ConvoSphere/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	username       TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	status         TEXT NOT NULL DEFAULT 'online',
	status_message TEXT NOT NULL DEFAULT '',
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS rooms (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	description TEXT NOT NULL DEFAULT '',
	is_default  BOOLEAN NOT NULL DEFAULT 0,
	creator_id  INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS room_members (
	room_id   INTEGER NOT NULL,
	user_id   INTEGER NOT NULL,
	joined_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (room_id, user_id),
	FOREIGN KEY (room_id) REFERENCES rooms(id),
	FOREIGN KEY (user_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS messages (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	sender_id       INTEGER NOT NULL,
	sender_username TEXT NOT NULL,
	room_id         INTEGER,
	receiver_id     INTEGER,
	body            TEXT NOT NULL,
	has_formatting  BOOLEAN NOT NULL DEFAULT 0,
	image           TEXT,
	is_read         BOOLEAN NOT NULL DEFAULT 0,
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sender_id) REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_private ON messages(sender_id, receiver_id, created_at DESC);

INSERT INTO rooms (name, description, is_default)
SELECT 'general', 'The default room everyone starts in.', 1
WHERE NOT EXISTS (SELECT 1 FROM rooms WHERE name = 'general');
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and ensures the schema exists.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply a custom schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*store.User, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES (?, ?)
	`, username, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, status, status_message, created_at
		FROM users
		WHERE id = ?
	`, id)
	return scanUser(row)
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, status, status_message, created_at
		FROM users
		WHERE username = ?
	`, username)
	return scanUser(row)
}

func (s *SQLiteStore) UpdateProfile(ctx context.Context, id int64, status, statusMessage string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users SET status = ?, status_message = ? WHERE id = ?
	`, status, statusMessage, id)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*store.User, error) {
	var u store.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Status, &u.StatusMessage, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

// ==== RoomStore implementation ====

func (s *SQLiteStore) CreateRoom(ctx context.Context, name, description string, creatorID int64) (*store.Room, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO rooms (name, description, creator_id)
		VALUES (?, ?, ?)
	`, name, description, creatorID)
	if err != nil {
		return nil, fmt.Errorf("insert room: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO room_members (room_id, user_id) VALUES (?, ?)
	`, id, creatorID); err != nil {
		return nil, fmt.Errorf("add creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetRoomByID(ctx, id)
}

func (s *SQLiteStore) GetRoomByID(ctx context.Context, id int64) (*store.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, is_default, creator_id, created_at
		FROM rooms
		WHERE id = ?
	`, id)
	return scanRoom(row)
}

func (s *SQLiteStore) GetRoomByName(ctx context.Context, name string) (*store.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, is_default, creator_id, created_at
		FROM rooms
		WHERE name = ?
	`, name)
	return scanRoom(row)
}

func (s *SQLiteStore) ListRooms(ctx context.Context) ([]*store.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, is_default, creator_id, created_at
		FROM rooms
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*store.Room
	for rows.Next() {
		var r store.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.IsDefault, &r.CreatorID, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, &r)
	}
	return rooms, rows.Err()
}

func (s *SQLiteStore) AddMember(ctx context.Context, roomID, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO room_members (room_id, user_id) VALUES (?, ?)
	`, roomID, userID); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RemoveMember(ctx context.Context, roomID, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM room_members WHERE room_id = ? AND user_id = ?
	`, roomID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *SQLiteStore) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM room_members WHERE room_id = ? AND user_id = ?
	`, roomID, userID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListMembers(ctx context.Context, roomID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM room_members WHERE room_id = ? ORDER BY joined_at
	`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func scanRoom(row *sql.Row) (*store.Room, error) {
	var r store.Room
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.IsDefault, &r.CreatorID, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan room: %w", err)
	}
	return &r, nil
}

// ==== MessageStore implementation ====

func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) (*store.Message, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (sender_id, sender_username, room_id, receiver_id, body, has_formatting, image)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.SenderID, msg.SenderUsername, msg.RoomID, msg.ReceiverID, msg.Body, msg.HasFormatting, msg.Image)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}
	return s.getMessage(ctx, id)
}

func (s *SQLiteStore) getMessage(ctx context.Context, id int64) (*store.Message, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, sender_username, room_id, receiver_id, body, has_formatting, image, is_read, created_at
		FROM messages
		WHERE id = ?
	`, id)
	var m store.Message
	err := row.Scan(&m.ID, &m.SenderID, &m.SenderUsername, &m.RoomID, &m.ReceiverID,
		&m.Body, &m.HasFormatting, &m.Image, &m.IsRead, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	return &m, nil
}

func (s *SQLiteStore) ListRoomMessages(ctx context.Context, roomID int64, page, limit int) ([]*store.Message, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM messages WHERE room_id = ?
	`, roomID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count room messages: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, sender_username, room_id, receiver_id, body, has_formatting, image, is_read, created_at
		FROM messages
		WHERE room_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, roomID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list room messages: %w", err)
	}
	defer rows.Close()

	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, 0, err
	}
	reverse(msgs) // oldest first within the page
	return msgs, total, nil
}

func (s *SQLiteStore) ListPrivateMessages(ctx context.Context, userA, userB int64, page, limit int) ([]*store.Message, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
	`, userA, userB, userB, userA).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count private messages: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, sender_username, room_id, receiver_id, body, has_formatting, image, is_read, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`, userA, userB, userB, userA, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list private messages: %w", err)
	}
	defer rows.Close()

	msgs, err := collectMessages(rows)
	if err != nil {
		return nil, 0, err
	}
	reverse(msgs)
	return msgs, total, nil
}

func (s *SQLiteStore) MarkPrivateRead(ctx context.Context, senderID, receiverID int64) error {
	if _, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE sender_id = ? AND receiver_id = ? AND is_read = 0
	`, senderID, receiverID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListConversations(ctx context.Context, userID int64) ([]*store.Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.sender_id, m.receiver_id, m.body, m.is_read, m.created_at,
		       su.username AS sender_name, ru.username AS receiver_name
		FROM messages m
		JOIN users su ON su.id = m.sender_id
		JOIN users ru ON ru.id = m.receiver_id
		WHERE m.receiver_id IS NOT NULL AND (m.sender_id = ? OR m.receiver_id = ?)
		ORDER BY m.created_at DESC, m.id DESC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var order []int64
	byPartner := make(map[int64]*store.Conversation)
	for rows.Next() {
		var (
			senderID, receiverID     int64
			body                     string
			isRead                   bool
			createdAt                time.Time
			senderName, receiverName string
		)
		if err := rows.Scan(&senderID, &receiverID, &body, &isRead, &createdAt, &senderName, &receiverName); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}

		partnerID, partnerName := receiverID, receiverName
		if receiverID == userID {
			partnerID, partnerName = senderID, senderName
		}

		conv, ok := byPartner[partnerID]
		if !ok {
			conv = &store.Conversation{
				UserID:          partnerID,
				Username:        partnerName,
				LastMessage:     body,
				LastMessageTime: createdAt,
			}
			byPartner[partnerID] = conv
			order = append(order, partnerID)
		}
		if senderID == partnerID && receiverID == userID && !isRead {
			conv.UnreadCount++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("conversation rows: %w", err)
	}

	conversations := make([]*store.Conversation, 0, len(order))
	for _, id := range order {
		conversations = append(conversations, byPartner[id])
	}
	return conversations, nil
}

func collectMessages(rows *sql.Rows) ([]*store.Message, error) {
	var msgs []*store.Message
	for rows.Next() {
		var m store.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.SenderUsername, &m.RoomID, &m.ReceiverID,
			&m.Body, &m.HasFormatting, &m.Image, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func reverse(msgs []*store.Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
