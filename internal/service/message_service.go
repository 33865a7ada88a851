package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/uniprbooks/backend/internal/model"
	"github.com/uniprbooks/backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrSelfMessage  = errors.New("cannot message yourself")
	ErrEmptyMessage = errors.New("message content required")
)

const timeFormat = time.RFC3339

// MessageView is one message on the wire.
type MessageView struct {
	ID         uint64 `json:"id"`
	SenderID   uint64 `json:"senderId"`
	ReceiverID uint64 `json:"receiverId"`
	Content    string `json:"content"`
	CreatedAt  string `json:"createdAt"`
}

type SendMessageInput struct {
	ReceiverID uint64 `json:"receiverId"`
	Content    string `json:"content"`
}

type MessageService interface {
	ListConversations(ctx context.Context, userID uint64) ([]repository.ConversationSummary, error)
	// GetMessages returns the thread with another user, oldest first.
	GetMessages(ctx context.Context, currentUserID, otherUserID uint64) ([]MessageView, error)
	SendMessage(ctx context.Context, in SendMessageInput, senderID uint64) (uint64, error)
}

type messageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
}

func NewMessageService(messages repository.MessageRepository, users repository.UserRepository) MessageService {
	return &messageService{messages: messages, users: users}
}

func (s *messageService) ListConversations(ctx context.Context, userID uint64) ([]repository.ConversationSummary, error) {
	return s.messages.Conversations(ctx, userID)
}

func (s *messageService) GetMessages(ctx context.Context, currentUserID, otherUserID uint64) ([]MessageView, error) {
	if otherUserID == 0 {
		return nil, ErrUserNotFound
	}
	if _, err := s.users.FindByID(ctx, otherUserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	msgs, err := s.messages.ListBetween(ctx, currentUserID, otherUserID)
	if err != nil {
		return nil, err
	}
	views := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, MessageView{
			ID:         m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			Content:    m.Content,
			CreatedAt:  m.CreatedAt.Format(timeFormat),
		})
	}
	return views, nil
}

func (s *messageService) SendMessage(ctx context.Context, in SendMessageInput, senderID uint64) (uint64, error) {
	if in.ReceiverID == 0 {
		return 0, ErrUserNotFound
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return 0, ErrEmptyMessage
	}
	if in.ReceiverID == senderID {
		return 0, ErrSelfMessage
	}
	if _, err := s.users.FindByID(ctx, in.ReceiverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}
	msg := &model.Message{
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		Content:    content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return 0, err
	}
	return msg.ID, nil
}
