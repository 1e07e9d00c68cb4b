package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a society member shown on the membership page. Members are
// usually derived from an approved Registration; the derivation keeps no
// reference back to the registration.
type Member struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name    string             `bson:"name,omitempty" json:"name,omitempty" validate:"notblank,max=200"`
	Role    string             `bson:"role,omitempty" json:"role,omitempty" validate:"notblank,max=100"`
	Img     string             `bson:"img,omitempty" json:"img,omitempty" validate:"required,imageref"`
	ImgPath string             `bson:"img_path,omitempty" json:"-"`

	LinkedIn      string `bson:"linkedin,omitempty" json:"linkedin,omitempty" validate:"omitempty,httpurl"`
	Twitter       string `bson:"twitter,omitempty" json:"twitter,omitempty" validate:"omitempty,httpurl"`
	GoogleScholar string `bson:"google_scholar,omitempty" json:"googleScholar,omitempty" validate:"omitempty,httpurl"`
	Website       string `bson:"website,omitempty" json:"website,omitempty" validate:"omitempty,httpurl"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (m *Member) Kind() Kind                           { return KindMember }
func (m *Member) GetID() primitive.ObjectID            { return m.ID }
func (m *Member) SetID(id primitive.ObjectID)          { m.ID = id }
func (m *Member) SetTimes(created, updated *time.Time) { m.CreatedAt, m.UpdatedAt = created, updated }
func (m *Member) Blobs() []BlobField                   { return []BlobField{{URL: &m.Img, Path: &m.ImgPath, PathKey: "img_path"}} }
