// internal/domain/models/kind.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind identifies one of the catalog entity types and the collection that
// stores it. The set is closed: values can only be obtained from the
// exported variables below, so a misspelled collection name cannot reach
// the store.
type Kind struct {
	name       string
	collection string
}

var (
	KindCourse   = Kind{name: "course", collection: "courses"}
	KindPartner  = Kind{name: "partner", collection: "partners"}
	KindEvent    = Kind{name: "event", collection: "events"}
	KindJournal  = Kind{name: "journal", collection: "journals"}
	KindPaper    = Kind{name: "paper", collection: "digital_library_papers"}
	KindResource = Kind{name: "resource", collection: "educational_resources"}
	KindMember   = Kind{name: "member", collection: "members"}
)

// AllKinds lists every catalog kind in display order.
var AllKinds = []Kind{KindCourse, KindPartner, KindEvent, KindJournal, KindPaper, KindResource, KindMember}

// Name is the singular, lower-case name of the kind (e.g. "course").
func (k Kind) Name() string { return k.name }

// Collection is the Mongo collection holding documents of this kind.
func (k Kind) Collection() string { return k.collection }

func (k Kind) String() string { return k.name }

// IsZero reports whether k is the zero Kind (not one of the declared kinds).
func (k Kind) IsZero() bool { return k.collection == "" }

// BlobField pairs a URL field with the storage path that backs it.
// Path is empty when the URL points outside our blob store.
type BlobField struct {
	URL     *string
	Path    *string
	PathKey string // bson key of Path
}

// Entity is implemented by every catalog document type.
type Entity interface {
	Kind() Kind
	GetID() primitive.ObjectID
	SetID(primitive.ObjectID)
	// SetTimes overwrites the created/updated timestamps.
	SetTimes(created, updated *time.Time)
	// Blobs returns the URL/path pairs of the entity that may reference
	// stored objects. Implementations use pointer receivers so callers
	// can rewrite the fields in place.
	Blobs() []BlobField
}
