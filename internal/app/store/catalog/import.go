package catalogstore

import (
	"context"
	"io"

	"github.com/aiesociety/aiesweb/internal/app/system/csvutil"
	"github.com/aiesociety/aiesweb/internal/domain/models"
)

// PaperRepo is the Repo for digital library papers.
type PaperRepo = Repo[models.Paper, *models.Paper]

// ImportPapers bulk-imports a paper CSV. The header gate and every row's
// validation run before anything is written; if any check fails nothing is
// imported. It returns the number of papers written.
func ImportPapers(ctx context.Context, repo *PaperRepo, r io.Reader) (int, error) {
	rows, err := csvutil.PreScanPapersCSV(r)
	if err != nil {
		return 0, err
	}
	return repo.InsertMany(ctx, rows)
}
