package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaperCSVHeader is the exact header row accepted by the bulk paper import.
var PaperCSVHeader = []string{"paperTitle", "authorName", "journalName", "volumeIssue", "link", "image"}

// Paper is an entry in the digital library.
//
// Image is optional: empty, or an image reference like every other entity.
type Paper struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PaperTitle  string             `bson:"paper_title,omitempty" json:"paperTitle,omitempty" validate:"notblank,max=300"`
	AuthorName  string             `bson:"author_name,omitempty" json:"authorName,omitempty" validate:"notblank,max=300"`
	JournalName string             `bson:"journal_name,omitempty" json:"journalName,omitempty" validate:"notblank,max=300"`
	VolumeIssue string             `bson:"volume_issue,omitempty" json:"volumeIssue,omitempty" validate:"notblank,max=100"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty" validate:"required,httpurl"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty" validate:"omitempty,imageref"`
	ImagePath   string             `bson:"image_path,omitempty" json:"-"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (p *Paper) Kind() Kind                           { return KindPaper }
func (p *Paper) GetID() primitive.ObjectID            { return p.ID }
func (p *Paper) SetID(id primitive.ObjectID)          { p.ID = id }
func (p *Paper) SetTimes(created, updated *time.Time) { p.CreatedAt, p.UpdatedAt = created, updated }
func (p *Paper) Blobs() []BlobField                   { return []BlobField{{URL: &p.Image, Path: &p.ImagePath, PathKey: "image_path"}} }

// PaperFromRow maps a CSV record positionally onto a Paper, following
// PaperCSVHeader. Missing trailing fields are left empty.
func PaperFromRow(rec []string) Paper {
	get := func(i int) string {
		if i < len(rec) {
			return rec[i]
		}
		return ""
	}
	return Paper{
		PaperTitle:  get(0),
		AuthorName:  get(1),
		JournalName: get(2),
		VolumeIssue: get(3),
		Link:        get(4),
		Image:       get(5),
	}
}
