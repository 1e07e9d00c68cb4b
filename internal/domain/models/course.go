package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Course is a course offered by the society.
//
// All fields are omitempty so that a Course value doubles as a merge patch:
// fields left at their zero value are not written on update.
type Course struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Title       string             `bson:"title,omitempty" json:"title,omitempty" validate:"notblank,max=200"`
	Description string             `bson:"description,omitempty" json:"description,omitempty" validate:"notblank,max=5000"`
	Duration    string             `bson:"duration,omitempty" json:"duration,omitempty" validate:"notblank,max=100"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty" validate:"notblank,max=100"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty" validate:"required,imageref"`
	ImagePath   string             `bson:"image_path,omitempty" json:"-"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty" validate:"omitempty,httpurl"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (c *Course) Kind() Kind                           { return KindCourse }
func (c *Course) GetID() primitive.ObjectID            { return c.ID }
func (c *Course) SetID(id primitive.ObjectID)          { c.ID = id }
func (c *Course) SetTimes(created, updated *time.Time) { c.CreatedAt, c.UpdatedAt = created, updated }
func (c *Course) Blobs() []BlobField                   { return []BlobField{{URL: &c.Image, Path: &c.ImagePath, PathKey: "image_path"}} }
