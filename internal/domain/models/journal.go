package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Journal is a journal published or endorsed by the society.
type Journal struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty" validate:"notblank,max=200"`
	Description string             `bson:"description,omitempty" json:"description,omitempty" validate:"notblank,max=5000"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty" validate:"required,imageref"`
	ImagePath   string             `bson:"image_path,omitempty" json:"-"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty" validate:"omitempty,httpurl"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (j *Journal) Kind() Kind                           { return KindJournal }
func (j *Journal) GetID() primitive.ObjectID            { return j.ID }
func (j *Journal) SetID(id primitive.ObjectID)          { j.ID = id }
func (j *Journal) SetTimes(created, updated *time.Time) { j.CreatedAt, j.UpdatedAt = created, updated }
func (j *Journal) Blobs() []BlobField                   { return []BlobField{{URL: &j.Image, Path: &j.ImagePath, PathKey: "image_path"}} }
