package model

import "time"

type Book struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"size:255;not null"`
	Author    string    `gorm:"size:255;not null"`
	ISBN      string    `gorm:"column:isbn;size:13;not null"`
	ImagePath string    `gorm:"column:image_path;size:512"`
	Teacher   string    `gorm:"size:255"`
	Course    string    `gorm:"size:255"`
	Price     float64   `gorm:"type:decimal(10,2);not null"`
	SellerID  uint64    `gorm:"column:seller_id;index:idx_books_seller_id;not null"`
	Available bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Book) TableName() string {
	return "books"
}
