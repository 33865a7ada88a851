package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/uniprbooks/backend/internal/blob"
	"github.com/uniprbooks/backend/internal/model"
	"github.com/uniprbooks/backend/internal/repository"
)

var jpegSample = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

func jpegDataURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegSample)
}

func newBookFixture(t *testing.T) (BookService, *repository.MemoryStore, *blob.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	images := blob.NewMemoryStore()
	return NewBookService(store.Books(), store.Users(), images), store, images
}

func seedUser(t *testing.T, store *repository.MemoryStore, username, email string) uint64 {
	t.Helper()
	user := &model.User{Username: username, Email: email, PasswordHash: "x"}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user.ID
}

func TestNormalizeAndValidISBN(t *testing.T) {
	tests := []struct {
		in         string
		normalized string
		valid      bool
	}{
		{in: "978-1-122-33445-5", normalized: "9781122334455", valid: true},
		{in: "9781122334455", normalized: "9781122334455", valid: true},
		{in: "0 306 40615 2", normalized: "0306406152", valid: true},
		{in: "12345678901", normalized: "12345678901", valid: false},
		{in: "123456789X", normalized: "123456789X", valid: false},
		{in: "", normalized: "", valid: false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeISBN(tt.in); got != tt.normalized {
				t.Errorf("NormalizeISBN(%q) = %q, want %q", tt.in, got, tt.normalized)
			}
			if got := ValidISBN(tt.in); got != tt.valid {
				t.Errorf("ValidISBN(%q) = %v, want %v", tt.in, got, tt.valid)
			}
		})
	}
}

func TestCreateBook(t *testing.T) {
	svc, store, images := newBookFixture(t)
	ctx := context.Background()
	sellerID := seedUser(t, store, "alice", "alice@example.com")

	id, err := svc.Create(ctx, CreateBookInput{
		Name:   "Calculus",
		Author: "Spivak",
		ISBN:   "978-1-122-33445-5",
		Price:  25.50,
		Image:  jpegDataURI(),
	}, sellerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero book id")
	}
	if images.Len() != 1 {
		t.Errorf("stored images = %d, want 1", images.Len())
	}

	listing, err := store.Books().FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if listing.ISBN != "9781122334455" {
		t.Errorf("stored ISBN = %q, want normalized form", listing.ISBN)
	}
	if !listing.Available {
		t.Error("new listing must start available")
	}
	if listing.SellerUsername != "alice" {
		t.Errorf("seller username = %q, want alice", listing.SellerUsername)
	}
}

func TestCreateBookRejectsInvalidInput(t *testing.T) {
	svc, store, images := newBookFixture(t)
	ctx := context.Background()
	sellerID := seedUser(t, store, "alice", "alice@example.com")
	valid := CreateBookInput{Name: "Calculus", Author: "Spivak", ISBN: "9781122334455", Price: 25.50}

	tests := []struct {
		name    string
		mutate  func(*CreateBookInput)
		wantErr error
	}{
		{name: "empty name", mutate: func(in *CreateBookInput) { in.Name = "  " }, wantErr: ErrInvalidInput},
		{name: "empty author", mutate: func(in *CreateBookInput) { in.Author = "" }, wantErr: ErrInvalidInput},
		{name: "bad isbn length", mutate: func(in *CreateBookInput) { in.ISBN = "12345678901" }, wantErr: ErrInvalidInput},
		{name: "isbn with letter", mutate: func(in *CreateBookInput) { in.ISBN = "123456789X" }, wantErr: ErrInvalidInput},
		{name: "zero price", mutate: func(in *CreateBookInput) { in.Price = 0 }, wantErr: ErrInvalidInput},
		{name: "negative price", mutate: func(in *CreateBookInput) { in.Price = -1 }, wantErr: ErrInvalidInput},
		{name: "bad image payload", mutate: func(in *CreateBookInput) { in.Image = "!!!" }, wantErr: blob.ErrInvalidData},
		{name: "unsupported image", mutate: func(in *CreateBookInput) { in.Image = base64.StdEncoding.EncodeToString([]byte("GIF89a..")) }, wantErr: blob.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			if _, err := svc.Create(ctx, in, sellerID); !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
	if images.Len() != 0 {
		t.Errorf("rejected creates must not leave blobs behind, got %d", images.Len())
	}
	all, err := store.Books().ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("rejected creates must not persist listings, got %d", len(all))
	}
}

// failingBookRepo makes Insert fail so the blob compensation path runs.
type failingBookRepo struct {
	repository.BookRepository
}

func (failingBookRepo) Insert(context.Context, *model.Book) error {
	return errors.New("insert failed")
}

func TestCreateBookCleansUpBlobOnInsertFailure(t *testing.T) {
	store := repository.NewMemoryStore()
	images := blob.NewMemoryStore()
	svc := NewBookService(failingBookRepo{store.Books()}, store.Users(), images)
	ctx := context.Background()
	sellerID := seedUser(t, store, "alice", "alice@example.com")

	_, err := svc.Create(ctx, CreateBookInput{
		Name: "Calculus", Author: "Spivak", ISBN: "9781122334455", Price: 10,
		Image: jpegDataURI(),
	}, sellerID)
	if err == nil {
		t.Fatal("expected insert failure to surface")
	}
	if images.Len() != 0 {
		t.Errorf("orphaned blob left after failed insert, images = %d", images.Len())
	}
}

func TestListFiltering(t *testing.T) {
	svc, store, _ := newBookFixture(t)
	ctx := context.Background()
	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")

	for i, sellerID := range []uint64{alice, alice, bob} {
		in := CreateBookInput{Name: "Book", Author: "Author", ISBN: "9781122334455", Price: float64(i + 1)}
		if _, err := svc.Create(ctx, in, sellerID); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	tests := []struct {
		name   string
		userID uint64
		mine   bool
		want   int
	}{
		{name: "anonymous sees everything", userID: 0, want: 3},
		{name: "alice browsing excludes own", userID: alice, want: 1},
		{name: "alice my-books", userID: alice, mine: true, want: 2},
		{name: "bob my-books", userID: bob, mine: true, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			views, err := svc.List(ctx, tt.userID, tt.mine)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(views) != tt.want {
				t.Errorf("got %d listings, want %d", len(views), tt.want)
			}
		})
	}
}

func TestUpdateBookPartial(t *testing.T) {
	svc, store, _ := newBookFixture(t)
	ctx := context.Background()
	sellerID := seedUser(t, store, "alice", "alice@example.com")

	id, err := svc.Create(ctx, CreateBookInput{
		Name: "Calculus", Author: "Spivak", ISBN: "9781122334455", Price: 25.50,
		Teacher: "Rossi", Course: "Analysis I",
	}, sellerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	available := false
	if err := svc.Update(ctx, UpdateBookInput{ID: id, Available: &available}, sellerID); err != nil {
		t.Fatalf("update: %v", err)
	}

	listing, err := store.Books().FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if listing.Available {
		t.Error("available flag not updated")
	}
	if listing.Name != "Calculus" || listing.Author != "Spivak" || listing.Price != 25.50 ||
		listing.Teacher != "Rossi" || listing.Course != "Analysis I" {
		t.Errorf("untouched fields changed: %+v", listing)
	}
}

func TestUpdateBookMultibyteNameLength(t *testing.T) {
	svc, store, _ := newBookFixture(t)
	ctx := context.Background()
	sellerID := seedUser(t, store, "alice", "alice@example.com")

	id, err := svc.Create(ctx, CreateBookInput{Name: "Calculus", Author: "Spivak", ISBN: "9781122334455", Price: 10}, sellerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 200 runes but 400 bytes: length limits count runes, not bytes.
	name := strings.Repeat("é", 200)
	if err := svc.Update(ctx, UpdateBookInput{ID: id, Name: &name}, sellerID); err != nil {
		t.Fatalf("update with multibyte name: %v", err)
	}
	listing, err := store.Books().FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if listing.Name != name {
		t.Error("multibyte name not stored")
	}

	tooLong := strings.Repeat("é", 256)
	if err := svc.Update(ctx, UpdateBookInput{ID: id, Name: &tooLong}, sellerID); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("update with 256-rune name error = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateBookAuthorization(t *testing.T) {
	svc, store, _ := newBookFixture(t)
	ctx := context.Background()
	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")

	id, err := svc.Create(ctx, CreateBookInput{Name: "Calculus", Author: "Spivak", ISBN: "9781122334455", Price: 10}, alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Hijacked"
	if err := svc.Update(ctx, UpdateBookInput{ID: id, Name: &name}, bob); !errors.Is(err, ErrForbidden) {
		t.Errorf("Update() by non-owner error = %v, want ErrForbidden", err)
	}
	if err := svc.Update(ctx, UpdateBookInput{ID: 9999, Name: &name}, alice); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() missing book error = %v, want ErrNotFound", err)
	}
	if err := svc.Update(ctx, UpdateBookInput{Name: &name}, alice); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Update() without id error = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateBookValidatesBeforeUpload(t *testing.T) {
	svc, store, images := newBookFixture(t)
	ctx := context.Background()
	sellerID := seedUser(t, store, "alice", "alice@example.com")

	id, err := svc.Create(ctx, CreateBookInput{Name: "Calculus", Author: "Spivak", ISBN: "9781122334455", Price: 10}, sellerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	badPrice := -5.0
	image := jpegDataURI()
	err = svc.Update(ctx, UpdateBookInput{ID: id, Price: &badPrice, Image: &image}, sellerID)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Update() error = %v, want ErrInvalidInput", err)
	}
	if images.Len() != 0 {
		t.Errorf("rejected update must not upload, images = %d", images.Len())
	}
}

func TestUpdateBookReplacesImage(t *testing.T) {
	svc, store, images := newBookFixture(t)
	ctx := context.Background()
	sellerID := seedUser(t, store, "alice", "alice@example.com")

	id, err := svc.Create(ctx, CreateBookInput{
		Name: "Calculus", Author: "Spivak", ISBN: "9781122334455", Price: 10,
		Image: jpegDataURI(),
	}, sellerID)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	before, err := store.Books().FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	image := jpegDataURI()
	if err := svc.Update(ctx, UpdateBookInput{ID: id, Image: &image}, sellerID); err != nil {
		t.Fatalf("update: %v", err)
	}

	after, err := store.Books().FindByID(ctx, id)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if after.ImagePath == before.ImagePath {
		t.Error("image ref not replaced")
	}
	if images.Len() != 1 {
		t.Errorf("old blob must be removed after replacement, images = %d", images.Len())
	}
}

func TestDeleteBook(t *testing.T) {
	svc, store, images := newBookFixture(t)
	ctx := context.Background()
	alice := seedUser(t, store, "alice", "alice@example.com")
	bob := seedUser(t, store, "bob", "bob@example.com")

	id, err := svc.Create(ctx, CreateBookInput{
		Name: "Calculus", Author: "Spivak", ISBN: "9781122334455", Price: 10,
		Image: jpegDataURI(),
	}, alice)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, DeleteBookInput{ID: id}, bob); !errors.Is(err, ErrForbidden) {
		t.Errorf("Delete() by non-owner error = %v, want ErrForbidden", err)
	}
	if err := svc.Delete(ctx, DeleteBookInput{ID: 9999}, alice); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() missing book error = %v, want ErrNotFound", err)
	}

	if err := svc.Delete(ctx, DeleteBookInput{ID: id}, alice); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Books().FindByID(ctx, id); err == nil {
		t.Error("listing still present after delete")
	}
	if images.Len() != 0 {
		t.Errorf("image blob must be removed with the listing, images = %d", images.Len())
	}
}
