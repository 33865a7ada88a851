package repository

import (
	"context"
	"errors"
	"time"

	"github.com/uniprbooks/backend/internal/model"
	"gorm.io/gorm"
)

// BookListing is a book row joined with the seller's username for display.
type BookListing struct {
	ID             uint64    `gorm:"column:id"`
	Name           string    `gorm:"column:name"`
	Author         string    `gorm:"column:author"`
	ISBN           string    `gorm:"column:isbn"`
	ImagePath      string    `gorm:"column:image_path"`
	Teacher        string    `gorm:"column:teacher"`
	Course         string    `gorm:"column:course"`
	Price          float64   `gorm:"column:price"`
	SellerID       uint64    `gorm:"column:seller_id"`
	SellerUsername string    `gorm:"column:seller_username"`
	Available      bool      `gorm:"column:available"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

type BookRepository interface {
	// ListAll returns every book regardless of availability, newest first.
	ListAll(ctx context.Context) ([]BookListing, error)
	FindByID(ctx context.Context, id uint64) (*BookListing, error)
	Insert(ctx context.Context, book *model.Book) error
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id uint64) error
	SetDB(db *gorm.DB)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

const bookListingSelect = `
SELECT b.id, b.name, b.author, b.isbn, b.image_path, b.teacher, b.course,
       b.price, b.seller_id, u.username AS seller_username, b.available, b.created_at
FROM books b
JOIN users u ON b.seller_id = u.id`

func (r *bookRepository) ListAll(ctx context.Context) ([]BookListing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []BookListing
	if err := r.db.WithContext(ctx).
		Raw(bookListingSelect + " ORDER BY b.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint64) (*BookListing, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []BookListing
	if err := r.db.WithContext(ctx).
		Raw(bookListingSelect+" WHERE b.id = ?", id).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *bookRepository) Insert(ctx context.Context, book *model.Book) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) Update(ctx context.Context, book *model.Book) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	if book.ID == 0 {
		return errors.New("book id required")
	}
	// Writes every column; partial-update merging happens in the service
	// layer against a fresh read of the row.
	return r.db.WithContext(ctx).
		Model(&model.Book{ID: book.ID}).
		Updates(map[string]interface{}{
			"name":       book.Name,
			"author":     book.Author,
			"isbn":       book.ISBN,
			"image_path": book.ImagePath,
			"teacher":    book.Teacher,
			"course":     book.Course,
			"price":      book.Price,
			"available":  book.Available,
		}).Error
}

func (r *bookRepository) Delete(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Delete(&model.Book{}, id).Error
}

func (r *bookRepository) SetDB(db *gorm.DB) {
	r.db = db
}
