package repository

import (
	"context"
	"errors"
	"time"

	"github.com/uniprbooks/backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaceOrder failure modes. The service layer pre-checks the same conditions
// for fast failure, but only the locked re-check here is authoritative.
var (
	ErrBookNotFound = errors.New("book not found")
	ErrBookSold     = errors.New("book already sold")
	ErrOwnBook      = errors.New("cannot purchase your own book")
)

// PurchaseRecord is one row of a buyer's order history.
type PurchaseRecord struct {
	OrderID        uint64    `gorm:"column:order_id"`
	PurchaseDate   time.Time `gorm:"column:purchase_date"`
	BookID         uint64    `gorm:"column:book_id"`
	BookName       string    `gorm:"column:book_name"`
	BookAuthor     string    `gorm:"column:book_author"`
	BookPrice      float64   `gorm:"column:book_price"`
	BookImage      string    `gorm:"column:book_image"`
	BookSellerID   uint64    `gorm:"column:book_seller_id"`
	SellerUsername string    `gorm:"column:seller_username"`
}

// SaleRecord is one row of a seller's sale history.
type SaleRecord struct {
	OrderID       uint64    `gorm:"column:order_id"`
	SaleDate      time.Time `gorm:"column:sale_date"`
	BookID        uint64    `gorm:"column:book_id"`
	BookName      string    `gorm:"column:book_name"`
	BookAuthor    string    `gorm:"column:book_author"`
	BookPrice     float64   `gorm:"column:book_price"`
	BookImage     string    `gorm:"column:book_image"`
	BuyerUsername string    `gorm:"column:buyer_username"`
}

type TransactionRepository interface {
	// PlaceOrder atomically re-validates the book under a row lock, inserts
	// the transaction, and flips availability. No partial state on failure.
	PlaceOrder(ctx context.Context, bookID, buyerID uint64) (uint64, error)
	ListByBuyer(ctx context.Context, buyerID uint64) ([]PurchaseRecord, error)
	ListBySeller(ctx context.Context, sellerID uint64) ([]SaleRecord, error)
	SetDB(db *gorm.DB)
}

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) PlaceOrder(ctx context.Context, bookID, buyerID uint64) (uint64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var orderID uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var book model.Book
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&book, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookNotFound
			}
			return err
		}
		if !book.Available {
			return ErrBookSold
		}
		if book.SellerID == buyerID {
			return ErrOwnBook
		}
		txn := model.Transaction{
			BookID:   bookID,
			BuyerID:  buyerID,
			SellerID: book.SellerID,
			Price:    book.Price,
		}
		if err := tx.Create(&txn).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Book{}).
			Where("id = ?", bookID).
			Update("available", false).Error; err != nil {
			return err
		}
		orderID = txn.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return orderID, nil
}

func (r *transactionRepository) ListByBuyer(ctx context.Context, buyerID uint64) ([]PurchaseRecord, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []PurchaseRecord
	if err := r.db.WithContext(ctx).Raw(`
		SELECT t.id AS order_id, t.created_at AS purchase_date,
		       b.id AS book_id, b.name AS book_name, b.author AS book_author,
		       b.price AS book_price, b.image_path AS book_image,
		       b.seller_id AS book_seller_id, u.username AS seller_username
		FROM transactions t
		JOIN books b ON t.book_id = b.id
		JOIN users u ON t.seller_id = u.id
		WHERE t.buyer_id = ?
		ORDER BY t.created_at DESC, t.id DESC`, buyerID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *transactionRepository) ListBySeller(ctx context.Context, sellerID uint64) ([]SaleRecord, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []SaleRecord
	if err := r.db.WithContext(ctx).Raw(`
		SELECT t.id AS order_id, t.created_at AS sale_date,
		       b.id AS book_id, b.name AS book_name, b.author AS book_author,
		       b.price AS book_price, b.image_path AS book_image,
		       u.username AS buyer_username
		FROM transactions t
		JOIN books b ON t.book_id = b.id
		JOIN users u ON t.buyer_id = u.id
		WHERE t.seller_id = ?
		ORDER BY t.created_at DESC, t.id DESC`, sellerID).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *transactionRepository) SetDB(db *gorm.DB) {
	r.db = db
}
