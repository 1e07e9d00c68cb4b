package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RegistrationsCollection stores membership applications.
const RegistrationsCollection = "registrations"

// Registration workflow states.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Registration types.
const (
	RegistrationStudent      = "student"
	RegistrationProfessional = "professional"
	RegistrationMember       = "member"
)

// Field limits shared by registration input and profile updates.
const (
	BiographyMaxLen = 1000
	PasswordMinLen  = 6
)

// IsValidStatus reports whether s is one of the workflow states.
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Registration is a membership application. Email is unique across
// registrations (enforced on EmailCI).
type Registration struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RegistrationType string             `bson:"registration_type" json:"registrationType"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	EmailCI          string             `bson:"email_ci" json:"-"` // folded for lookups
	Contact          string             `bson:"contact" json:"contact"`
	Biography        string             `bson:"biography" json:"biography"`
	Photo            string             `bson:"photo" json:"photo"`
	PhotoPath        string             `bson:"photo_path,omitempty" json:"-"`

	LinkedIn      string `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	Twitter       string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	GoogleScholar string `bson:"google_scholar,omitempty" json:"googleScholar,omitempty"`
	Website       string `bson:"website,omitempty" json:"website,omitempty"`

	PasswordHash string `bson:"password_hash" json:"-"`
	Status       string `bson:"status" json:"status"`

	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// RegistrationInput is what an applicant submits.
type RegistrationInput struct {
	RegistrationType string `json:"registrationType" validate:"required,oneof=student professional member"`
	Name             string `json:"name" validate:"notblank,max=200"`
	Email            string `json:"email" validate:"required,email"`
	Contact          string `json:"contact" validate:"notblank,min=7,max=20"`
	Biography        string `json:"biography" validate:"notblank,max=1000"`
	Photo            string `json:"photo" validate:"required,imageref"`
	LinkedIn         string `json:"linkedin" validate:"omitempty,httpurl"`
	Twitter          string `json:"twitter" validate:"omitempty,httpurl"`
	GoogleScholar    string `json:"googleScholar" validate:"omitempty,httpurl"`
	Website          string `json:"website" validate:"omitempty,httpurl"`
	Password         string `json:"password" validate:"required,min=6,max=72"`
}

// ProfileUpdate is the subset of a registration a member may change.
// Status and email are deliberately absent. Empty fields are left unchanged.
type ProfileUpdate struct {
	Name          string `json:"name,omitempty" validate:"omitempty,notblank,max=200"`
	Contact       string `json:"contact,omitempty" validate:"omitempty,min=7,max=20"`
	Biography     string `json:"biography,omitempty" validate:"omitempty,max=1000"`
	Photo         string `json:"photo,omitempty" validate:"omitempty,imageref"`
	LinkedIn      string `json:"linkedin,omitempty" validate:"omitempty,httpurl"`
	Twitter       string `json:"twitter,omitempty" validate:"omitempty,httpurl"`
	GoogleScholar string `json:"googleScholar,omitempty" validate:"omitempty,httpurl"`
	Website       string `json:"website,omitempty" validate:"omitempty,httpurl"`
}

// IsEmpty reports whether the update carries no changes.
func (p ProfileUpdate) IsEmpty() bool {
	return p == ProfileUpdate{}
}

// MemberFromRegistration derives the public Member record for an approved
// registration. The photo blob stays owned by the registration, so the
// member references its URL without taking over the storage path.
func MemberFromRegistration(reg Registration) Member {
	return Member{
		Name:          reg.Name,
		Role:          reg.RegistrationType,
		Img:           reg.Photo,
		LinkedIn:      reg.LinkedIn,
		Twitter:       reg.Twitter,
		GoogleScholar: reg.GoogleScholar,
		Website:       reg.Website,
	}
}
