package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FileTypeLink is the FileType recorded for resources that point to an
// external link instead of an uploaded file.
const FileTypeLink = "link"

// Resource is an educational resource. Its content is exactly one of an
// uploaded file (FileURL/FileName/FileType) or an external Link.
type Resource struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty" validate:"notblank,max=200"`
	Description string             `bson:"description,omitempty" json:"description,omitempty" validate:"notblank,max=5000"`

	FileURL  string `bson:"file_url,omitempty" json:"fileUrl,omitempty" validate:"omitempty,blobref"`
	FileName string `bson:"file_name,omitempty" json:"fileName,omitempty" validate:"omitempty,max=255"`
	FileType string `bson:"file_type,omitempty" json:"fileType,omitempty" validate:"omitempty,max=100"`
	FilePath string `bson:"file_path,omitempty" json:"-"`
	Link     string `bson:"link,omitempty" json:"link,omitempty" validate:"omitempty,httpurl"`

	CoverImage     string `bson:"cover_image,omitempty" json:"coverImage,omitempty" validate:"omitempty,imageref"`
	CoverImagePath string `bson:"cover_image_path,omitempty" json:"-"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (r *Resource) Kind() Kind                           { return KindResource }
func (r *Resource) GetID() primitive.ObjectID            { return r.ID }
func (r *Resource) SetID(id primitive.ObjectID)          { r.ID = id }
func (r *Resource) SetTimes(created, updated *time.Time) { r.CreatedAt, r.UpdatedAt = created, updated }
func (r *Resource) Blobs() []BlobField {
	return []BlobField{
		{URL: &r.FileURL, Path: &r.FilePath, PathKey: "file_path"},
		{URL: &r.CoverImage, Path: &r.CoverImagePath, PathKey: "cover_image_path"},
	}
}

// HasFile reports whether the resource content is an uploaded file.
func (r *Resource) HasFile() bool { return r.FileURL != "" }

// HasLink reports whether the resource content is an external link.
func (r *Resource) HasLink() bool { return r.Link != "" }

// Normalize records the link file type for link resources.
func (r *Resource) Normalize() {
	if r.Link != "" {
		r.FileType = FileTypeLink
	}
}

// Unsets lists the stored fields that must be cleared when this value is
// applied as an update: switching to a link drops the file fields and
// switching to a file drops the link.
func (r *Resource) Unsets() []string {
	switch {
	case r.Link != "":
		return []string{"file_url", "file_name", "file_path"}
	case r.FileURL != "":
		return []string{"link"}
	}
	return nil
}

// Check enforces that a resource has exactly one content source. On a
// partial update only a payload naming both sources is rejected.
func (r *Resource) Check(full bool) map[string]string {
	hasFile, hasLink := r.FileURL != "", r.Link != ""
	switch {
	case hasFile && hasLink:
		return map[string]string{"link": "provide either a file or a link, not both"}
	case full && !hasFile && !hasLink:
		return map[string]string{"fileUrl": "a file or a link is required"}
	}
	return nil
}
