package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Partner is an organisation or person shown on the partners page.
type Partner struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name,omitempty" json:"name,omitempty" validate:"notblank,max=200"`
	Designation string             `bson:"designation,omitempty" json:"designation,omitempty" validate:"notblank,max=200"`
	Logo        string             `bson:"logo,omitempty" json:"logo,omitempty" validate:"required,imageref"`
	LogoPath    string             `bson:"logo_path,omitempty" json:"-"`

	// Social links are optional; when present each must be a valid URL.
	LinkedIn  string `bson:"linkedin,omitempty" json:"linkedin,omitempty" validate:"omitempty,httpurl"`
	Twitter   string `bson:"twitter,omitempty" json:"twitter,omitempty" validate:"omitempty,httpurl"`
	Facebook  string `bson:"facebook,omitempty" json:"facebook,omitempty" validate:"omitempty,httpurl"`
	Instagram string `bson:"instagram,omitempty" json:"instagram,omitempty" validate:"omitempty,httpurl"`

	CreatedAt *time.Time `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

func (p *Partner) Kind() Kind                           { return KindPartner }
func (p *Partner) GetID() primitive.ObjectID            { return p.ID }
func (p *Partner) SetID(id primitive.ObjectID)          { p.ID = id }
func (p *Partner) SetTimes(created, updated *time.Time) { p.CreatedAt, p.UpdatedAt = created, updated }
func (p *Partner) Blobs() []BlobField                   { return []BlobField{{URL: &p.Logo, Path: &p.LogoPath, PathKey: "logo_path"}} }
