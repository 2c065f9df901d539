package suggestions

import (
	"context"
	"fmt"
	"testing"

	"github.com/thereayou/duetchat/internal/database"
	"github.com/thereayou/duetchat/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupCorpus(t *testing.T, rows []models.Suggestion) (*database.Database, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open sqlite: %v", err)
	}
	if err := database.Migrate(gdb); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	db := database.NewDatabase(gdb)
	if len(rows) > 0 {
		if err := db.ReplaceSuggestions(rows); err != nil {
			t.Fatalf("seed corpus: %v", err)
		}
	}
	return db, gdb
}

func TestSamplerFullCategory(t *testing.T) {
	db, _ := setupCorpus(t, []models.Suggestion{
		{Category: "food", Kind: "starter", Text: "s1"},
		{Category: "food", Kind: "starter", Text: "s2"},
		{Category: "food", Kind: "starter", Text: "s3"},
		{Category: "food", Kind: "starter", Text: "s4"},
	})
	s := NewDatabaseSampler(db)

	got := s.Fetch(context.Background(), Request{Category: "food", Kind: KindStarter})
	if len(got) != K {
		t.Fatalf("batch size = %d, want %d", len(got), K)
	}
	seen := map[string]bool{}
	for _, text := range got {
		if seen[text] {
			t.Errorf("duplicate %q", text)
		}
		seen[text] = true
	}
}

func TestSamplerReplyTopUp(t *testing.T) {
	db, _ := setupCorpus(t, []models.Suggestion{
		{Category: "food", Kind: "reply", Text: "food-only"},
		{Category: GeneralCategory, Kind: "reply", Text: "g1"},
		{Category: GeneralCategory, Kind: "reply", Text: "g2"},
		{Category: GeneralCategory, Kind: "reply", Text: "g3"},
	})
	s := NewDatabaseSampler(db)

	got := s.Fetch(context.Background(), Request{Category: "food", Kind: KindReply})
	if len(got) != K {
		t.Fatalf("batch size = %d, want %d", len(got), K)
	}

	found := false
	seen := map[string]bool{}
	for _, text := range got {
		if text == "food-only" {
			found = true
		}
		if seen[text] {
			t.Errorf("duplicate %q after top-up", text)
		}
		seen[text] = true
	}
	if !found {
		t.Errorf("category row missing from batch: %v", got)
	}
}

func TestSamplerExhaustedCorpus(t *testing.T) {
	// Добирать неоткуда: отдаем меньше K
	db, _ := setupCorpus(t, []models.Suggestion{
		{Category: "food", Kind: "reply", Text: "only-one"},
	})
	s := NewDatabaseSampler(db)

	got := s.Fetch(context.Background(), Request{Category: "food", Kind: KindReply})
	if len(got) != 1 || got[0] != "only-one" {
		t.Errorf("batch = %v, want [only-one]", got)
	}
}

func TestSamplerStarterNoTopUp(t *testing.T) {
	db, _ := setupCorpus(t, []models.Suggestion{
		{Category: "food", Kind: "starter", Text: "s1"},
		{Category: GeneralCategory, Kind: "starter", Text: "g1"},
	})
	s := NewDatabaseSampler(db)

	got := s.Fetch(context.Background(), Request{Category: "food", Kind: KindStarter})
	if len(got) != 1 || got[0] != "s1" {
		t.Errorf("starters should not top up: %v", got)
	}
}

func TestSamplerEmptyCorpusFallsBack(t *testing.T) {
	db, _ := setupCorpus(t, nil)
	s := NewDatabaseSampler(db)

	got := s.Fetch(context.Background(), Request{Category: "food", Kind: KindStarter})
	want := Fallback(KindStarter)
	if len(got) != len(want) {
		t.Fatalf("batch = %v, want fallback %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("batch[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSamplerStoreFailureFallsBack(t *testing.T) {
	db, gdb := setupCorpus(t, []models.Suggestion{
		{Category: "food", Kind: "reply", Text: "r1"},
	})
	s := NewDatabaseSampler(db)

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.Close()

	got := s.Fetch(context.Background(), Request{Category: "food", Kind: KindReply})
	want := Fallback(KindReply)
	if len(got) != len(want) {
		t.Fatalf("batch = %v, want fallback", got)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("batch[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFallbackReturnsCopy(t *testing.T) {
	first := Fallback(KindReply)
	first[0] = "mutated"

	second := Fallback(KindReply)
	if second[0] == "mutated" {
		t.Error("Fallback shares its backing array with callers")
	}
}

func TestServedStoreNilSafe(t *testing.T) {
	ctx := context.Background()

	var s *ServedStore
	s.Remember(ctx, "room-1", []string{"a"})
	s.Clear(ctx, "room-1")
	if got := s.Recent(ctx, "room-1"); got != nil {
		t.Errorf("Recent on nil store = %v", got)
	}

	s = NewServedStore(nil)
	s.Remember(ctx, "room-1", []string{"a"})
	s.Clear(ctx, "room-1")
	if got := s.Recent(ctx, "room-1"); got != nil {
		t.Errorf("Recent without redis = %v", got)
	}
}
