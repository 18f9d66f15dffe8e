package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/groundex/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "corpus", "groundex.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func report(subject string, eventType model.EventType, index int, vessels ...string) *model.Report {
	args := model.NewArguments(model.RoleVessel, model.RoleLocation)
	args.Add(model.RoleVessel, vessels...)
	args.Add(model.RoleLocation, "Suez Canal")
	return &model.Report{
		Subject:     subject,
		Source:      "inline",
		ExtractedAt: time.Now().UTC(),
		Authority:   model.TierSecondary,
		Event: model.Event{
			Text:         subject + " ran aground",
			Extractor:    "pattern",
			EventType:    eventType,
			TriggerWords: []string{"aground"},
			Arguments:    args,
		},
		Score: model.Score{Index: index, Confidence: "medium"},
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	r := report("Ever Given", model.EventGrounding, 70, "MV Ever Given", "ship")
	id, err := s.Save(ctx, r)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, r.ID)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ever Given", got.Subject)
	assert.Equal(t, model.EventGrounding, got.Event.EventType)
	assert.Equal(t, model.TierSecondary, got.Authority)
	assert.Equal(t, []string{"MV Ever Given", "ship"}, got.Event.Arguments[model.RoleVessel])

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSave_ReplacesExisting(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	r := report("Ever Given", model.EventGrounding, 70, "MV Ever Given")
	id, err := s.Save(ctx, r)
	require.NoError(t, err)

	r.Event.Arguments[model.RoleVessel] = []string{"Ever Given"}
	_, err = s.Save(ctx, r)
	require.NoError(t, err)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	freqs, err := s.RoleFrequencies(ctx, model.RoleVessel, 10)
	require.NoError(t, err)
	assert.Equal(t, []Frequency{{Value: "Ever Given", Count: 1}}, freqs)

	require.NoError(t, s.Delete(ctx, id))
	assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)
}

func TestList_Filter(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, r := range []*model.Report{
		report("a", model.EventGrounding, 80, "ship"),
		report("b", model.EventCollision, 40, "ship"),
		report("c", model.EventGrounding, 30, "vessel"),
	} {
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}

	all, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	grounding, err := s.List(ctx, Filter{EventType: model.EventGrounding})
	require.NoError(t, err)
	assert.Len(t, grounding, 2)

	strong, err := s.List(ctx, Filter{MinIndex: 50})
	require.NoError(t, err)
	require.Len(t, strong, 1)
	assert.Equal(t, "a", strong[0].Subject)
	assert.Equal(t, 80, strong[0].Completeness)

	limited, err := s.List(ctx, Filter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestList_NewestFirstWithinSecond(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	older := report("older", model.EventGrounding, 50, "ship")
	older.ExtractedAt = base.Add(120 * time.Millisecond)
	newer := report("newer", model.EventGrounding, 50, "ship")
	newer.ExtractedAt = base.Add(123 * time.Millisecond)
	whole := report("whole", model.EventGrounding, 50, "ship")
	whole.ExtractedAt = base

	for _, r := range []*model.Report{older, newer, whole} {
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}

	list, err := s.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "newer", list[0].Subject)
	assert.Equal(t, "older", list[1].Subject)
	assert.Equal(t, "whole", list[2].Subject)
	assert.True(t, list[0].ExtractedAt.Equal(newer.ExtractedAt))
}

func TestRoleFrequencies_UnicodeCase(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, r := range []*model.Report{
		report("a", model.EventGrounding, 50, "ÉCLAIR"),
		report("b", model.EventGrounding, 50, "éclair"),
	} {
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}

	freqs, err := s.RoleFrequencies(ctx, model.RoleVessel, 10)
	require.NoError(t, err)
	require.Len(t, freqs, 1)
	assert.Equal(t, 2, freqs[0].Count)
	assert.Contains(t, []string{"ÉCLAIR", "éclair"}, freqs[0].Value)
}

func TestAggregates(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	for _, r := range []*model.Report{
		report("a", model.EventGrounding, 80, "Ship", "MV Ever Given"),
		report("b", model.EventGrounding, 40, "ship"),
		report("c", model.EventStranding, 30, "ferry"),
	} {
		_, err := s.Save(ctx, r)
		require.NoError(t, err)
	}

	counts, err := s.EventTypeCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[model.EventType]int{
		model.EventGrounding: 2,
		model.EventStranding: 1,
	}, counts)

	freqs, err := s.RoleFrequencies(ctx, "VESSEL", 2)
	require.NoError(t, err)
	require.Len(t, freqs, 2)
	assert.Equal(t, 2, freqs[0].Count)
	assert.Contains(t, []string{"Ship", "ship"}, freqs[0].Value)
	assert.Equal(t, 1, freqs[1].Count)

	locations, err := s.RoleFrequencies(ctx, model.RoleLocation, 0)
	require.NoError(t, err)
	assert.Equal(t, []Frequency{{Value: "Suez Canal", Count: 3}}, locations)
}

func TestSave_Nil(t *testing.T) {
	s := openTemp(t)
	_, err := s.Save(context.Background(), nil)
	assert.Error(t, err)
}
