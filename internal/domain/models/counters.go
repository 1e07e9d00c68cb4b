package models

import "time"

const (
	// SiteSettingsCollection holds singleton configuration documents.
	SiteSettingsCollection = "site_settings"
	// CountersID is the well-known _id of the counters singleton.
	CountersID = "counters"
)

// Counters holds the headline numbers displayed on the home page.
type Counters struct {
	Members     int `bson:"members" json:"members" validate:"gte=0"`
	Projects    int `bson:"projects" json:"projects" validate:"gte=0"`
	Journals    int `bson:"journals" json:"journals" validate:"gte=0"`
	Subscribers int `bson:"subscribers" json:"subscribers" validate:"gte=0"`

	UpdatedAt *time.Time `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// DefaultCounters is returned when the singleton document does not exist.
var DefaultCounters = Counters{
	Members:     2000,
	Projects:    200,
	Journals:    23,
	Subscribers: 4000,
}
