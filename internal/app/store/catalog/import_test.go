package catalogstore_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	catalogstore "github.com/aiesociety/aiesweb/internal/app/store/catalog"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/aiesociety/aiesweb/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const paperHeader = "paperTitle,authorName,journalName,volumeIssue,link,image"

func paperCSV(rows ...string) string {
	return paperHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func TestImportPapers_WritesEveryRow(t *testing.T) {
	f := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	repo := catalogstore.New[models.Paper](f.deps)
	f.views.Set(viewcache.DigitalLibrary, []byte("cached"))

	var rows []string
	for i := 0; i < 12; i++ {
		rows = append(rows, fmt.Sprintf("Paper %d,Author,Journal,1(%d),https://papers.example.org/%d,", i, i, i))
	}
	n, err := catalogstore.ImportPapers(ctx, repo, strings.NewReader(paperCSV(rows...)))
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 12)

	_, ok := f.views.Get(viewcache.DigitalLibrary)
	assert.False(t, ok)
}

func TestImportPapers_HeaderMismatchRejectsBatch(t *testing.T) {
	f := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	repo := catalogstore.New[models.Paper](f.deps)

	in := "PaperTitle,authorName,journalName,volumeIssue,link,image\nT,A,J,1,https://papers.example.org/t,\n"
	n, err := catalogstore.ImportPapers(ctx, repo, strings.NewReader(in))
	assert.Zero(t, n)
	var fe schema.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "header")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportPapers_InvalidRowRejectsBatch(t *testing.T) {
	f := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	repo := catalogstore.New[models.Paper](f.deps)

	in := paperCSV(
		"Good,Author,Journal,1,https://papers.example.org/good,",
		"No link,Author,Journal,1",
	)
	n, err := catalogstore.ImportPapers(ctx, repo, strings.NewReader(in))
	assert.Zero(t, n)
	var fe schema.FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe, "2.link")

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
