// internal/app/system/limits/limits.go
package limits

// Request body size limits for various features.
// These limits help prevent memory exhaustion from oversized requests.
const (
	// MaxDataURIBytes is the largest decoded inline (data URI) image.
	MaxDataURIBytes = 5 << 20 // 5 MB

	// MaxJSONBody is the maximum size of a JSON request body. Inline images
	// travel base64-encoded in JSON, so it sits above MaxDataURIBytes.
	MaxJSONBody = 12 << 20 // 12 MB

	// MaxUploadSize is the maximum size of a single temporary file upload.
	MaxUploadSize = 20 << 20 // 20 MB

	// MaxMultipartMemory is how much of a multipart form is held in memory;
	// the rest spills to temporary files.
	MaxMultipartMemory = 8 << 20 // 8 MB

	// MaxImportCSV is the maximum size of a bulk import CSV file.
	MaxImportCSV = 5 << 20 // 5 MB

	// MaxImportRows is the maximum number of data rows in one import.
	MaxImportRows = 20000
)
