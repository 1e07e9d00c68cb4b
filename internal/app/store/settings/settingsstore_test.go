package settingsstore_test

import (
	"errors"
	"testing"

	settingsstore "github.com/aiesociety/aiesweb/internal/app/store/settings"
	"github.com/aiesociety/aiesweb/internal/app/system/schema"
	"github.com/aiesociety/aiesweb/internal/app/system/viewcache"
	"github.com/aiesociety/aiesweb/internal/domain/models"
	"github.com/aiesociety/aiesweb/internal/testutil"
	"go.uber.org/zap"
)

func TestStore_Counters_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := settingsstore.New(db, nil, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Counters(ctx)
	if err != nil {
		t.Fatalf("Counters failed: %v", err)
	}
	want := models.Counters{Members: 2000, Projects: 200, Journals: 23, Subscribers: 4000}
	if c != want {
		t.Errorf("Counters: got %+v, want %+v", c, want)
	}
}

func TestStore_SetCounters_Upserts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	views := viewcache.New(0, zap.NewNop())
	store := settingsstore.New(db, nil, views)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	views.Set(viewcache.Home, []byte("home"))
	views.Set(viewcache.Counters, []byte("counters"))

	in := models.Counters{Members: 2500, Projects: 210, Journals: 25, Subscribers: 4100}
	for i := 0; i < 2; i++ {
		if _, err := store.SetCounters(ctx, in); err != nil {
			t.Fatalf("SetCounters #%d failed: %v", i+1, err)
		}
	}

	got, err := store.Counters(ctx)
	if err != nil {
		t.Fatalf("Counters failed: %v", err)
	}
	if got.Members != 2500 || got.Projects != 210 || got.Journals != 25 || got.Subscribers != 4100 {
		t.Errorf("Counters: got %+v", got)
	}
	if got.UpdatedAt == nil {
		t.Error("UpdatedAt should be set")
	}

	n, err := db.Collection(models.SiteSettingsCollection).CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("site_settings documents: got %d, want 1", n)
	}

	if _, ok := views.Get(viewcache.Home); ok {
		t.Error("home view should be invalidated")
	}
	if _, ok := views.Get(viewcache.Counters); ok {
		t.Error("counters view should be invalidated")
	}
}

func TestStore_SetCounters_RejectsNegative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := settingsstore.New(db, nil, nil)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.SetCounters(ctx, models.Counters{Members: 1, Projects: 1, Journals: -1, Subscribers: 1})
	var fe schema.FieldErrors
	if !errors.As(err, &fe) {
		t.Fatalf("expected FieldErrors, got %v", err)
	}
	if _, ok := fe["journals"]; !ok {
		t.Errorf("expected journals error, got %v", fe)
	}

	c, err := store.Counters(ctx)
	if err != nil {
		t.Fatalf("Counters failed: %v", err)
	}
	if c != models.DefaultCounters {
		t.Errorf("store should be unchanged, got %+v", c)
	}
}
