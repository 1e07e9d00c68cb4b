package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// ValidCourse returns a course that passes full validation.
func ValidCourse(title string) models.Course {
	return models.Course{
		Title:       title,
		Description: "An introduction for educators.",
		Duration:    "6 weeks",
		Category:    "Machine Learning",
		Image:       "https://cdn.example.org/" + text.Fold(title) + ".png",
	}
}

// ValidPaper returns a paper that passes full validation.
func ValidPaper(title string) models.Paper {
	return models.Paper{
		PaperTitle:  title,
		AuthorName:  "A. Researcher",
		JournalName: "Journal of AI Education",
		VolumeIssue: "12(3)",
		Link:        "https://papers.example.org/" + primitive.NewObjectID().Hex(),
	}
}

// ValidRegistration returns registration input that passes validation.
func ValidRegistration(email string) models.RegistrationInput {
	return models.RegistrationInput{
		RegistrationType: models.RegistrationStudent,
		Name:             "Ada Lovelace",
		Email:            email,
		Contact:          "+44 20 7946 0000",
		Biography:        "Mathematician and writer.",
		Photo:            "https://cdn.example.org/ada.png",
		LinkedIn:         "https://linkedin.example.org/ada",
		Password:         "secret1",
	}
}

// CreateCourse inserts a course directly, bypassing validation.
func (f *Fixtures) CreateCourse(ctx context.Context, title string) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	c := ValidCourse(title)
	c.ID = primitive.NewObjectID()
	c.CreatedAt = &now

	if _, err := f.db.Collection(models.KindCourse.Collection()).InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	return c
}

// CreateRegistration inserts a registration with the given status and
// password hash directly.
func (f *Fixtures) CreateRegistration(ctx context.Context, email, status, passwordHash string) models.Registration {
	f.t.Helper()

	in := ValidRegistration(email)
	reg := models.Registration{
		ID:               primitive.NewObjectID(),
		RegistrationType: in.RegistrationType,
		Name:             in.Name,
		Email:            email,
		EmailCI:          text.Fold(email),
		Contact:          in.Contact,
		Biography:        in.Biography,
		Photo:            in.Photo,
		LinkedIn:         in.LinkedIn,
		PasswordHash:     passwordHash,
		Status:           status,
		CreatedAt:        time.Now().UTC(),
	}
	if _, err := f.db.Collection(models.RegistrationsCollection).InsertOne(ctx, reg); err != nil {
		f.t.Fatalf("failed to create test registration: %v", err)
	}
	return reg
}

// Count returns the number of documents in the named collection.
func (f *Fixtures) Count(ctx context.Context, collection string) int64 {
	f.t.Helper()
	n, err := f.db.Collection(collection).CountDocuments(ctx, map[string]any{})
	if err != nil {
		f.t.Fatalf("count %s: %v", collection, err)
	}
	return n
}
