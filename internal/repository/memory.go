package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/uniprbooks/backend/internal/model"
	"gorm.io/gorm"
)

// MemoryStore is an in-process storage gateway with the same contract as the
// MySQL-backed repositories, including PlaceOrder atomicity. Used by tests
// and usable anywhere a throwaway backend is good enough.
type MemoryStore struct {
	mu    sync.Mutex
	users map[uint64]model.User
	books map[uint64]model.Book
	txns  map[uint64]model.Transaction
	msgs  map[uint64]model.Message

	nextUser uint64
	nextBook uint64
	nextTxn  uint64
	nextMsg  uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uint64]model.User),
		books: make(map[uint64]model.Book),
		txns:  make(map[uint64]model.Transaction),
		msgs:  make(map[uint64]model.Message),
	}
}

func (s *MemoryStore) Users() UserRepository               { return &memoryUserRepo{s} }
func (s *MemoryStore) Books() BookRepository               { return &memoryBookRepo{s} }
func (s *MemoryStore) Transactions() TransactionRepository { return &memoryTransactionRepo{s} }
func (s *MemoryStore) Messages() MessageRepository         { return &memoryMessageRepo{s} }

type memoryUserRepo struct{ s *MemoryStore }

func (r *memoryUserRepo) Create(_ context.Context, user *model.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	// Case-insensitive, matching the collation of the unique index on email.
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = *user
	return nil
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uint64) (*model.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memoryUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memoryUserRepo) SetDB(*gorm.DB) {}

type memoryBookRepo struct{ s *MemoryStore }

func (s *MemoryStore) listingLocked(b model.Book) BookListing {
	return BookListing{
		ID:             b.ID,
		Name:           b.Name,
		Author:         b.Author,
		ISBN:           b.ISBN,
		ImagePath:      b.ImagePath,
		Teacher:        b.Teacher,
		Course:         b.Course,
		Price:          b.Price,
		SellerID:       b.SellerID,
		SellerUsername: s.users[b.SellerID].Username,
		Available:      b.Available,
		CreatedAt:      b.CreatedAt,
	}
}

func (r *memoryBookRepo) ListAll(_ context.Context) ([]BookListing, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]BookListing, 0, len(s.books))
	for _, b := range s.books {
		out = append(out, s.listingLocked(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *memoryBookRepo) FindByID(_ context.Context, id uint64) (*BookListing, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	listing := s.listingLocked(b)
	return &listing, nil
}

func (r *memoryBookRepo) Insert(_ context.Context, book *model.Book) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBook++
	book.ID = s.nextBook
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}
	s.books[book.ID] = *book
	return nil
}

func (r *memoryBookRepo) Update(_ context.Context, book *model.Book) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.books[book.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *book
	updated.SellerID = existing.SellerID
	updated.CreatedAt = existing.CreatedAt
	s.books[book.ID] = updated
	return nil
}

func (r *memoryBookRepo) Delete(_ context.Context, id uint64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.books, id)
	return nil
}

func (r *memoryBookRepo) SetDB(*gorm.DB) {}

type memoryTransactionRepo struct{ s *MemoryStore }

func (r *memoryTransactionRepo) PlaceOrder(_ context.Context, bookID, buyerID uint64) (uint64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.books[bookID]
	if !ok {
		return 0, ErrBookNotFound
	}
	if !book.Available {
		return 0, ErrBookSold
	}
	if book.SellerID == buyerID {
		return 0, ErrOwnBook
	}
	s.nextTxn++
	txn := model.Transaction{
		ID:        s.nextTxn,
		BookID:    bookID,
		BuyerID:   buyerID,
		SellerID:  book.SellerID,
		Price:     book.Price,
		CreatedAt: time.Now(),
	}
	s.txns[txn.ID] = txn
	book.Available = false
	s.books[bookID] = book
	return txn.ID, nil
}

func (r *memoryTransactionRepo) ListByBuyer(_ context.Context, buyerID uint64) ([]PurchaseRecord, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PurchaseRecord
	for _, t := range s.txns {
		if t.BuyerID != buyerID {
			continue
		}
		b := s.books[t.BookID]
		out = append(out, PurchaseRecord{
			OrderID:        t.ID,
			PurchaseDate:   t.CreatedAt,
			BookID:         b.ID,
			BookName:       b.Name,
			BookAuthor:     b.Author,
			BookPrice:      b.Price,
			BookImage:      b.ImagePath,
			BookSellerID:   b.SellerID,
			SellerUsername: s.users[t.SellerID].Username,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID > out[j].OrderID })
	return out, nil
}

func (r *memoryTransactionRepo) ListBySeller(_ context.Context, sellerID uint64) ([]SaleRecord, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SaleRecord
	for _, t := range s.txns {
		if t.SellerID != sellerID {
			continue
		}
		b := s.books[t.BookID]
		out = append(out, SaleRecord{
			OrderID:       t.ID,
			SaleDate:      t.CreatedAt,
			BookID:        b.ID,
			BookName:      b.Name,
			BookAuthor:    b.Author,
			BookPrice:     b.Price,
			BookImage:     b.ImagePath,
			BuyerUsername: s.users[t.BuyerID].Username,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID > out[j].OrderID })
	return out, nil
}

func (r *memoryTransactionRepo) SetDB(*gorm.DB) {}

type memoryMessageRepo struct{ s *MemoryStore }

func (r *memoryMessageRepo) Create(_ context.Context, msg *model.Message) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMsg++
	msg.ID = s.nextMsg
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.msgs[msg.ID] = *msg
	return nil
}

func (r *memoryMessageRepo) ListBetween(_ context.Context, userA, userB uint64) ([]model.Message, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Message
	for _, m := range s.msgs {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *memoryMessageRepo) Conversations(_ context.Context, userID uint64) ([]ConversationSummary, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	latest := make(map[uint64]model.Message)
	for _, m := range s.msgs {
		var other uint64
		switch userID {
		case m.SenderID:
			other = m.ReceiverID
		case m.ReceiverID:
			other = m.SenderID
		default:
			continue
		}
		if cur, ok := latest[other]; !ok || m.ID > cur.ID {
			latest[other] = m
		}
	}
	out := make([]ConversationSummary, 0, len(latest))
	for other, m := range latest {
		out = append(out, ConversationSummary{
			UserID:          other,
			Username:        s.users[other].Username,
			LastMessage:     m.Content,
			LastSenderID:    m.SenderID,
			LastMessageDate: m.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastMessageDate.Equal(out[j].LastMessageDate) {
			return latest[out[i].UserID].ID > latest[out[j].UserID].ID
		}
		return out[i].LastMessageDate.After(out[j].LastMessageDate)
	})
	return out, nil
}

func (r *memoryMessageRepo) SetDB(*gorm.DB) {}
