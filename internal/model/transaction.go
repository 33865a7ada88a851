package model

import "time"

// Transaction is the immutable record of a completed purchase. Price is
// snapshotted from the book row at purchase time.
type Transaction struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	BookID    uint64    `gorm:"column:book_id;index;not null"`
	BuyerID   uint64    `gorm:"column:buyer_id;index;not null"`
	SellerID  uint64    `gorm:"column:seller_id;index;not null"`
	Price     float64   `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}
