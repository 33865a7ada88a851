package model

import "time"

type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   uint64    `gorm:"column:sender_id;index;not null" json:"senderId"`
	ReceiverID uint64    `gorm:"column:receiver_id;index;not null" json:"receiverId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}
