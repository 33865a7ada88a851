package service

import (
	"context"
	"errors"

	"github.com/uniprbooks/backend/internal/blob"
	"github.com/uniprbooks/backend/internal/repository"
	"gorm.io/gorm"
)

// PurchaseResult is what the buyer gets back: the order id and the seller's
// email as a contact channel outside the messaging system.
type PurchaseResult struct {
	OrderID     uint64
	SellerEmail string
}

// PurchaseView is one order in a buyer's history.
type PurchaseView struct {
	OrderID        uint64   `json:"orderId"`
	Book           BookSnap `json:"book"`
	SellerUsername string   `json:"sellerUsername"`
	PurchaseDate   string   `json:"purchaseDate"`
}

// SaleView is one order in a seller's history.
type SaleView struct {
	OrderID       uint64   `json:"orderId"`
	Book          BookSnap `json:"book"`
	BuyerUsername string   `json:"buyerUsername"`
	SaleDate      string   `json:"saleDate"`
}

// BookSnap is the book snapshot embedded in order history rows. SellerID is
// only populated on the buyer side.
type BookSnap struct {
	ID        uint64  `json:"id"`
	Name      string  `json:"name"`
	Author    string  `json:"author"`
	Price     float64 `json:"price"`
	ImagePath string  `json:"imagePath"`
	SellerID  uint64  `json:"sellerId,omitempty"`
}

type PurchaseService interface {
	// Purchase re-reads the book, fast-fails on the obvious conflicts, then
	// delegates to the storage layer's atomic PlaceOrder, which re-validates
	// under a row lock. Two concurrent purchases of one book yield exactly
	// one order.
	Purchase(ctx context.Context, bookID, buyerID uint64) (*PurchaseResult, error)
	ListPurchases(ctx context.Context, buyerID uint64) ([]PurchaseView, error)
	ListSales(ctx context.Context, sellerID uint64) ([]SaleView, error)
}

type purchaseService struct {
	txns   repository.TransactionRepository
	books  repository.BookRepository
	users  repository.UserRepository
	images blob.Store
}

func NewPurchaseService(txns repository.TransactionRepository, books repository.BookRepository, users repository.UserRepository, images blob.Store) PurchaseService {
	return &purchaseService{txns: txns, books: books, users: users, images: images}
}

func (s *purchaseService) Purchase(ctx context.Context, bookID, buyerID uint64) (*PurchaseResult, error) {
	// Always re-read; listing-time data may be stale by now.
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBookNotFound
		}
		return nil, err
	}
	if !book.Available {
		return nil, repository.ErrBookSold
	}
	if book.SellerID == buyerID {
		return nil, repository.ErrOwnBook
	}

	orderID, err := s.txns.PlaceOrder(ctx, bookID, buyerID)
	if err != nil {
		return nil, err
	}

	sellerEmail := ""
	if seller, err := s.users.FindByID(ctx, book.SellerID); err == nil {
		sellerEmail = seller.Email
	}
	return &PurchaseResult{OrderID: orderID, SellerEmail: sellerEmail}, nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, buyerID uint64) ([]PurchaseView, error) {
	records, err := s.txns.ListByBuyer(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	views := make([]PurchaseView, 0, len(records))
	for _, rec := range records {
		views = append(views, PurchaseView{
			OrderID: rec.OrderID,
			Book: BookSnap{
				ID:        rec.BookID,
				Name:      rec.BookName,
				Author:    rec.BookAuthor,
				Price:     rec.BookPrice,
				ImagePath: imageDataURI(ctx, s.images, rec.BookImage),
				SellerID:  rec.BookSellerID,
			},
			SellerUsername: rec.SellerUsername,
			PurchaseDate:   rec.PurchaseDate.Format(timeFormat),
		})
	}
	return views, nil
}

func (s *purchaseService) ListSales(ctx context.Context, sellerID uint64) ([]SaleView, error) {
	records, err := s.txns.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	views := make([]SaleView, 0, len(records))
	for _, rec := range records {
		views = append(views, SaleView{
			OrderID: rec.OrderID,
			Book: BookSnap{
				ID:        rec.BookID,
				Name:      rec.BookName,
				Author:    rec.BookAuthor,
				Price:     rec.BookPrice,
				ImagePath: imageDataURI(ctx, s.images, rec.BookImage),
			},
			BuyerUsername: rec.BuyerUsername,
			SaleDate:      rec.SaleDate.Format(timeFormat),
		})
	}
	return views, nil
}
