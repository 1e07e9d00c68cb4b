package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a talk, workshop or conference listed on the events page and
// featured on the home page.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty" validate:"notblank,max=200"`
	Subtitle    string             `bson:"subtitle,omitempty" json:"subtitle,omitempty" validate:"notblank,max=300"`
	Description string             `bson:"description,omitempty" json:"description,omitempty" validate:"notblank,max=5000"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty" validate:"notblank,max=100"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty" validate:"required,imageref"`
	ImagePath   string             `bson:"image_path,omitempty" json:"-"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty" validate:"required,httpurl"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (e *Event) Kind() Kind                           { return KindEvent }
func (e *Event) GetID() primitive.ObjectID            { return e.ID }
func (e *Event) SetID(id primitive.ObjectID)          { e.ID = id }
func (e *Event) SetTimes(created, updated *time.Time) { e.CreatedAt, e.UpdatedAt = created, updated }
func (e *Event) Blobs() []BlobField                   { return []BlobField{{URL: &e.Image, Path: &e.ImagePath, PathKey: "image_path"}} }
