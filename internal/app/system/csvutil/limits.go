// internal/app/system/csvutil/limits.go
package csvutil

import "github.com/aiesociety/aiesweb/internal/app/system/limits"

// Upload size and row limits for CSV processing.
const (
	MaxUploadSize = limits.MaxImportCSV
	MaxRows       = limits.MaxImportRows
)
