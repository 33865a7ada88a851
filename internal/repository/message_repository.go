package repository

import (
	"context"
	"time"

	"github.com/uniprbooks/backend/internal/model"
	"gorm.io/gorm"
)

// ConversationSummary is the latest message exchanged with one counterparty.
// Conversations are derived from message rows at query time, not stored.
type ConversationSummary struct {
	UserID          uint64    `gorm:"column:user_id" json:"userId"`
	Username        string    `gorm:"column:username" json:"username"`
	LastMessage     string    `gorm:"column:last_message" json:"lastMessage"`
	LastSenderID    uint64    `gorm:"column:last_sender_id" json:"lastSenderId"`
	LastMessageDate time.Time `gorm:"column:last_message_date" json:"lastMessageDate"`
}

type MessageRepository interface {
	Create(ctx context.Context, msg *model.Message) error
	// ListBetween returns the thread between two users, oldest first.
	ListBetween(ctx context.Context, userA, userB uint64) ([]model.Message, error)
	// Conversations returns one summary per counterparty, most recent
	// conversation first; the latest message of a pair is the one with the
	// highest id.
	Conversations(ctx context.Context, userID uint64) ([]ConversationSummary, error)
	SetDB(db *gorm.DB)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *model.Message) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepository) ListBetween(ctx context.Context, userA, userB uint64) ([]model.Message, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var msgs []model.Message
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userA, userB, userB, userA).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *messageRepository) Conversations(ctx context.Context, userID uint64) ([]ConversationSummary, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []ConversationSummary
	if err := r.db.WithContext(ctx).Raw(`
		SELECT u.id AS user_id, u.username,
		       m.content AS last_message, m.sender_id AS last_sender_id,
		       m.created_at AS last_message_date
		FROM messages m
		JOIN users u ON u.id = CASE WHEN m.sender_id = ? THEN m.receiver_id ELSE m.sender_id END
		WHERE m.id IN (
			SELECT MAX(id) FROM messages
			WHERE sender_id = ? OR receiver_id = ?
			GROUP BY CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END
		)
		ORDER BY m.created_at DESC, m.id DESC`,
		userID, userID, userID, userID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *messageRepository) SetDB(db *gorm.DB) {
	r.db = db
}
