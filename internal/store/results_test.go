package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/callscore-ai/callscore/internal/core"
)

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func sampleResult(conversationID string) *core.AnalysisResult {
	return &core.AnalysisResult{
		ID: "res-" + conversationID,
		Metadata: core.ConversationMetadata{
			ConversationID: conversationID,
			OpportunityID:  "opp-1",
			SalesRep:       "Amy",
			ProductLine:    core.ProductLineIchef,
		},
		Score: core.QualificationScore{
			Dimensions: map[core.Dimension]core.DimensionScore{
				core.DimChampion: {Score: 4, Evidence: []string{"想趕快上線"}},
			},
			OverallScore: 72,
			Status:       core.StatusMedium,
		},
		CustomerMessage: "謝謝您今天的時間",
		RawOutputs:      map[core.Role]string{core.RoleBuyer: `{"pdcm": {}}`},
		CreatedAt:       time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleResult("conv-1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.GetByConversation(ctx, "conv-1")
	if err != nil {
		t.Fatalf("GetByConversation: %v", err)
	}
	if got.Score.OverallScore != 72 || got.Score.Status != core.StatusMedium {
		t.Errorf("score = %+v", got.Score)
	}
	if got.CustomerMessage != "謝謝您今天的時間" {
		t.Errorf("customer message = %q", got.CustomerMessage)
	}
	if got.Score.Dimension(core.DimChampion).Score != 4 {
		t.Errorf("champion = %d", got.Score.Dimension(core.DimChampion).Score)
	}
}

func TestSaveReplacesSameConversation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, sampleResult("conv-1")); err != nil {
		t.Fatal(err)
	}
	updated := sampleResult("conv-1")
	updated.ID = "res-2"
	updated.Score.OverallScore = 90
	if err := s.Save(ctx, updated); err != nil {
		t.Fatal(err)
	}

	results, err := s.ListByOpportunity(ctx, "opp-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score.OverallScore != 90 {
		t.Errorf("overall = %d, want the replacement", results[0].Score.OverallScore)
	}
}

func TestGetMissingConversation(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetByConversation(context.Background(), "missing")
	if !core.IsCategory(err, core.ErrCatNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestListByOpportunityNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	old := sampleResult("conv-1")
	old.CreatedAt = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	recent := sampleResult("conv-2")
	recent.CreatedAt = time.Date(2026, 4, 3, 9, 0, 0, 0, time.UTC)

	if err := s.Save(ctx, old); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, recent); err != nil {
		t.Fatal(err)
	}

	results, err := s.ListByOpportunity(ctx, "opp-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Metadata.ConversationID != "conv-2" {
		t.Errorf("first result = %s, want the newest", results[0].Metadata.ConversationID)
	}
}

func TestExportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "conv-1.json")
	want := sampleResult("conv-1")

	if err := ExportJSON(want, path); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	got, err := ReadExport(path)
	if err != nil {
		t.Fatalf("ReadExport: %v", err)
	}
	if got.ID != want.ID || got.Score.OverallScore != want.Score.OverallScore {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestReadExportDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv-1.json")
	if err := ExportJSON(sampleResult("conv-1"), path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	tampered := append([]byte(nil), data...)
	for i := 0; i+1 < len(tampered); i++ {
		if tampered[i] == '7' && tampered[i+1] == '2' {
			tampered[i] = '9'
			break
		}
	}
	if err := os.WriteFile(path, tampered, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = ReadExport(path)
	if !core.IsCategory(err, core.ErrCatState) {
		t.Fatalf("error = %v, want state error for checksum mismatch", err)
	}
}
