package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/uniprbooks/backend/internal/blob"
	"github.com/uniprbooks/backend/internal/model"
	"github.com/uniprbooks/backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("book not found")
	ErrForbidden = errors.New("forbidden")
)

var isbnPattern = regexp.MustCompile(`^\d{10}$|^\d{13}$`)

// NormalizeISBN strips hyphens and whitespace. No checksum validation.
func NormalizeISBN(isbn string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, isbn)
}

// ValidISBN reports whether the normalized form is exactly 10 or 13 digits.
func ValidISBN(isbn string) bool {
	return isbnPattern.MatchString(NormalizeISBN(isbn))
}

// BookView is a listing as served to clients: seller username joined in and
// the image expanded to a data URI.
type BookView struct {
	ID             uint64  `json:"id"`
	Name           string  `json:"name"`
	Author         string  `json:"author"`
	ISBN           string  `json:"isbn"`
	ImagePath      string  `json:"imagePath"`
	Teacher        string  `json:"teacher"`
	Course         string  `json:"course"`
	Price          float64 `json:"price"`
	SellerID       uint64  `json:"sellerId"`
	SellerUsername string  `json:"sellerUsername"`
	Available      bool    `json:"available"`
}

type CreateBookInput struct {
	Name    string  `json:"name" validate:"required,max=255"`
	Author  string  `json:"author" validate:"required,max=255"`
	ISBN    string  `json:"isbn" validate:"required"`
	Price   float64 `json:"price" validate:"required,gt=0"`
	Teacher string  `json:"teacher"`
	Course  string  `json:"course"`
	Image   string  `json:"image"`
}

// UpdateBookInput carries a partial update: nil fields keep their stored
// values. Wrong-typed fields (e.g. a string "available") fail JSON binding
// before reaching the service.
type UpdateBookInput struct {
	ID        uint64   `json:"id"`
	Name      *string  `json:"name"`
	Author    *string  `json:"author"`
	ISBN      *string  `json:"isbn"`
	Price     *float64 `json:"price"`
	Teacher   *string  `json:"teacher"`
	Course    *string  `json:"course"`
	Available *bool    `json:"available"`
	Image     *string  `json:"image"`
}

type DeleteBookInput struct {
	ID uint64 `json:"id"`
}

type BookService interface {
	// List returns all listings. userID == 0 means anonymous: everything is
	// returned unfiltered. With a user id, mine selects between "only my
	// books" and "everyone else's books".
	List(ctx context.Context, userID uint64, mine bool) ([]BookView, error)
	Create(ctx context.Context, in CreateBookInput, sellerID uint64) (uint64, error)
	Update(ctx context.Context, in UpdateBookInput, userID uint64) error
	Delete(ctx context.Context, in DeleteBookInput, userID uint64) error
}

type bookService struct {
	books  repository.BookRepository
	users  repository.UserRepository
	images blob.Store
}

func NewBookService(books repository.BookRepository, users repository.UserRepository, images blob.Store) BookService {
	return &bookService{books: books, users: users, images: images}
}

// imageDataURI reads a stored image back as a data URI. Listings with a
// missing or unreadable blob render without an image rather than failing.
func imageDataURI(ctx context.Context, images blob.Store, ref string) string {
	if ref == "" {
		return ""
	}
	data, contentType, err := images.Get(ctx, ref)
	if err != nil {
		return ""
	}
	return blob.DataURI(data, contentType)
}

func (s *bookService) toView(ctx context.Context, l repository.BookListing) BookView {
	return BookView{
		ID:             l.ID,
		Name:           l.Name,
		Author:         l.Author,
		ISBN:           l.ISBN,
		ImagePath:      imageDataURI(ctx, s.images, l.ImagePath),
		Teacher:        l.Teacher,
		Course:         l.Course,
		Price:          l.Price,
		SellerID:       l.SellerID,
		SellerUsername: l.SellerUsername,
		Available:      l.Available,
	}
}

func (s *bookService) List(ctx context.Context, userID uint64, mine bool) ([]BookView, error) {
	listings, err := s.books.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]BookView, 0, len(listings))
	for _, l := range listings {
		if userID != 0 {
			if mine && l.SellerID != userID {
				continue
			}
			if !mine && l.SellerID == userID {
				continue
			}
		}
		views = append(views, s.toView(ctx, l))
	}
	return views, nil
}

func (s *bookService) Create(ctx context.Context, in CreateBookInput, sellerID uint64) (uint64, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Author = strings.TrimSpace(in.Author)
	in.Teacher = strings.TrimSpace(in.Teacher)
	in.Course = strings.TrimSpace(in.Course)
	if err := validate.Struct(in); err != nil {
		return 0, ErrInvalidInput
	}
	if !ValidISBN(in.ISBN) {
		return 0, ErrInvalidInput
	}
	if _, err := s.users.FindByID(ctx, sellerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	imagePath := ""
	if in.Image != "" {
		data, contentType, err := blob.ParseImage(in.Image)
		if err != nil {
			return 0, err
		}
		imagePath, err = s.images.Put(ctx, data, contentType)
		if err != nil {
			return 0, err
		}
	}

	book := &model.Book{
		Name:      in.Name,
		Author:    in.Author,
		ISBN:      NormalizeISBN(in.ISBN),
		ImagePath: imagePath,
		Teacher:   in.Teacher,
		Course:    in.Course,
		Price:     in.Price,
		SellerID:  sellerID,
		Available: true,
	}
	if err := s.books.Insert(ctx, book); err != nil {
		// No cross-store atomicity: compensate by dropping the orphaned blob.
		if imagePath != "" {
			_ = s.images.Delete(ctx, imagePath)
		}
		return 0, err
	}
	return book.ID, nil
}

func (s *bookService) Update(ctx context.Context, in UpdateBookInput, userID uint64) error {
	if in.ID == 0 {
		return ErrInvalidInput
	}
	existing, err := s.books.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if existing.SellerID != userID {
		return ErrForbidden
	}

	// Validate every present field before touching the blob store so a
	// rejected update never leaves an orphaned upload behind.
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > 255 {
			return ErrInvalidInput
		}
		in.Name = &trimmed
	}
	if in.Author != nil {
		trimmed := strings.TrimSpace(*in.Author)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > 255 {
			return ErrInvalidInput
		}
		in.Author = &trimmed
	}
	if in.ISBN != nil && !ValidISBN(*in.ISBN) {
		return ErrInvalidInput
	}
	if in.Price != nil && *in.Price <= 0 {
		return ErrInvalidInput
	}
	var (
		newImageData []byte
		newImageType string
	)
	if in.Image != nil && *in.Image != "" {
		newImageData, newImageType, err = blob.ParseImage(*in.Image)
		if err != nil {
			return err
		}
	}

	newImagePath := ""
	if newImageData != nil {
		newImagePath, err = s.images.Put(ctx, newImageData, newImageType)
		if err != nil {
			return err
		}
	}

	updated := &model.Book{
		ID:        existing.ID,
		Name:      existing.Name,
		Author:    existing.Author,
		ISBN:      existing.ISBN,
		ImagePath: existing.ImagePath,
		Teacher:   existing.Teacher,
		Course:    existing.Course,
		Price:     existing.Price,
		SellerID:  existing.SellerID,
		Available: existing.Available,
	}
	if in.Name != nil {
		updated.Name = *in.Name
	}
	if in.Author != nil {
		updated.Author = *in.Author
	}
	if in.ISBN != nil {
		updated.ISBN = NormalizeISBN(*in.ISBN)
	}
	if in.Price != nil {
		updated.Price = *in.Price
	}
	if in.Teacher != nil {
		updated.Teacher = strings.TrimSpace(*in.Teacher)
	}
	if in.Course != nil {
		updated.Course = strings.TrimSpace(*in.Course)
	}
	if in.Available != nil {
		updated.Available = *in.Available
	}
	if newImagePath != "" {
		updated.ImagePath = newImagePath
	}

	if err := s.books.Update(ctx, updated); err != nil {
		if newImagePath != "" {
			_ = s.images.Delete(ctx, newImagePath)
		}
		return err
	}
	// Old blob cleanup is best-effort and never blocks the response.
	if newImagePath != "" && existing.ImagePath != "" {
		_ = s.images.Delete(ctx, existing.ImagePath)
	}
	return nil
}

func (s *bookService) Delete(ctx context.Context, in DeleteBookInput, userID uint64) error {
	if in.ID == 0 {
		return ErrInvalidInput
	}
	existing, err := s.books.FindByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if existing.SellerID != userID {
		return ErrForbidden
	}
	if err := s.books.Delete(ctx, in.ID); err != nil {
		return err
	}
	if existing.ImagePath != "" {
		_ = s.images.Delete(ctx, existing.ImagePath)
	}
	return nil
}
