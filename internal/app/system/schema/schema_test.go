package schema_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validCourse() *models.Course {
	return &models.Course{
		Title:       "Intro to Machine Learning",
		Description: "Twelve weeks of supervised and unsupervised learning.",
		Duration:    "12 weeks",
		Category:    "Machine Learning",
		Image:       "https://cdn.example.org/ml.png",
	}
}

func fieldErrors(t *testing.T, err error) schema.FieldErrors {
	t.Helper()
	var fe schema.FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
	return fe
}

func TestStruct_ValidCourse(t *testing.T) {
	v := schema.New()
	assert.NoError(t, v.Struct(validCourse()))
}

func TestStruct_MissingFieldsKeyedByJSONName(t *testing.T) {
	v := schema.New()
	c := validCourse()
	c.Title = "   "
	c.Image = ""

	fe := fieldErrors(t, v.Struct(c))
	assert.Equal(t, "is required", fe["title"])
	assert.Equal(t, "is required", fe["image"])
	assert.Len(t, fe, 2)
}

func TestStruct_OptionalLinkMustBeURL(t *testing.T) {
	v := schema.New()
	c := validCourse()
	c.Link = "not a url"

	fe := fieldErrors(t, v.Struct(c))
	assert.Contains(t, fe, "link")
}

func TestStruct_ImageAcceptsDataURIAndTempUpload(t *testing.T) {
	v := schema.New()

	c := validCourse()
	c.Image = "data:image/png;base64,iVBORw0KGgo="
	assert.NoError(t, v.Struct(c))

	c.Image = "tmp/5f0c/photo.png"
	assert.NoError(t, v.Struct(c))

	c.Image = "tmp/../secrets"
	assert.Error(t, v.Struct(c))
}

func TestStruct_EventRequiresLink(t *testing.T) {
	v := schema.New()
	e := &models.Event{
		Title:       "Annual Summit",
		Subtitle:    "AI in classrooms",
		Description: "Two days of talks.",
		Category:    "Conference",
		Image:       "https://cdn.example.org/summit.png",
	}
	fe := fieldErrors(t, v.Struct(e))
	assert.Equal(t, "is required", fe["link"])

	e.Link = "https://events.example.org/summit"
	assert.NoError(t, v.Struct(e))
}

func TestStruct_PaperImageOptional(t *testing.T) {
	v := schema.New()
	p := &models.Paper{
		PaperTitle:  "Attention Is All You Need",
		AuthorName:  "Vaswani et al.",
		JournalName: "NeurIPS",
		VolumeIssue: "30",
		Link:        "https://papers.example.org/attention",
	}
	assert.NoError(t, v.Struct(p))

	p.Image = "ftp://example.org/x.png"
	fe := fieldErrors(t, v.Struct(p))
	assert.Contains(t, fe, "image")
}

func TestStruct_ResourceExactlyOneSource(t *testing.T) {
	v := schema.New()
	r := &models.Resource{Title: "Syllabus", Description: "Course syllabus"}

	fe := fieldErrors(t, v.Struct(r))
	assert.Contains(t, fe, "fileUrl")

	r.Link = "https://example.org/syllabus"
	assert.NoError(t, v.Struct(r))

	r.FileURL = "tmp/abc/syllabus.pdf"
	fe = fieldErrors(t, v.Struct(r))
	assert.Contains(t, fe, "link")
}

func TestStruct_CountersNonNegative(t *testing.T) {
	v := schema.New()
	assert.NoError(t, v.Struct(&models.Counters{}))

	fe := fieldErrors(t, v.Struct(&models.Counters{Members: 10, Projects: -1}))
	assert.Equal(t, "must be zero or greater", fe["projects"])
}

func TestStruct_RegistrationInput(t *testing.T) {
	v := schema.New()
	in := &models.RegistrationInput{
		RegistrationType: "student",
		Name:             "Ada Lovelace",
		Email:            "ada@example.org",
		Contact:          "+44 20 7946 0000",
		Biography:        "Mathematician.",
		Photo:            "https://cdn.example.org/ada.png",
		Password:         "secret1",
	}
	require.NoError(t, v.Struct(in))

	in.RegistrationType = "guest"
	in.Password = "123"
	in.Biography = strings.Repeat("x", models.BiographyMaxLen+1)
	fe := fieldErrors(t, v.Struct(in))
	assert.Contains(t, fe, "registrationType")
	assert.Equal(t, "must be at least 6 characters", fe["password"])
	assert.Contains(t, fe, "biography")
}

func TestPartial_OnlySuppliedFieldsChecked(t *testing.T) {
	v := schema.New()

	// A title-only patch is valid even though image and the rest are absent.
	assert.NoError(t, v.Partial(&models.Course{Title: "Renamed"}))

	// A supplied field is still validated.
	fe := fieldErrors(t, v.Partial(&models.Course{Title: "  "}))
	assert.Contains(t, fe, "title")

	fe = fieldErrors(t, v.Partial(&models.Course{Link: "nope"}))
	assert.Contains(t, fe, "link")
}

func TestPartial_ResourceRejectsBothSources(t *testing.T) {
	v := schema.New()
	assert.NoError(t, v.Partial(&models.Resource{Title: "Only title"}))

	fe := fieldErrors(t, v.Partial(&models.Resource{
		FileURL: "https://cdn.example.org/a.pdf",
		Link:    "https://example.org/a",
	}))
	assert.Contains(t, fe, "link")
}

func TestSupplied(t *testing.T) {
	got := schema.Supplied(&models.Course{Title: "x", Category: "y"})
	assert.ElementsMatch(t, []string{"Title", "Category"}, got)
	assert.Empty(t, schema.Supplied(&models.Course{}))
	assert.Nil(t, schema.Supplied("not a struct"))
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	fe := schema.FieldErrors{"title": "is required", "image": "is required"}
	assert.Equal(t, "validation failed: image: is required; title: is required", fe.Error())
}

// Any non-negative counter set validates, any negative value does not.
func TestStruct_CountersProperty(t *testing.T) {
	v := schema.New()
	rapid.Check(t, func(rt *rapid.T) {
		c := models.Counters{
			Members:     rapid.IntRange(-1000, 100000).Draw(rt, "members"),
			Projects:    rapid.IntRange(-1000, 100000).Draw(rt, "projects"),
			Journals:    rapid.IntRange(-1000, 100000).Draw(rt, "journals"),
			Subscribers: rapid.IntRange(-1000, 100000).Draw(rt, "subscribers"),
		}
		wantOK := c.Members >= 0 && c.Projects >= 0 && c.Journals >= 0 && c.Subscribers >= 0
		err := v.Struct(&c)
		if wantOK && err != nil {
			rt.Fatalf("expected %+v to validate, got %v", c, err)
		}
		if !wantOK && err == nil {
			rt.Fatalf("expected %+v to be rejected", c)
		}
	})
}
