package access

import (
	"math"
	"testing"
	"time"

	"github.com/kevinaaaquil/docshare/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fixtureDocs() []models.Document {
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mk := func(i int, name, desc, owner string, team bool, shared ...string) models.Document {
		return models.Document{
			ID:              primitive.NewObjectID(),
			Name:            name,
			Description:     desc,
			OwnerID:         owner,
			TeamShared:      team,
			SharedWithUsers: shared,
			ShareableLink:   name + "-link",
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		}
	}
	return []models.Document{
		mk(0, "Quarterly report", "", "a", true),
		mk(1, "Holiday photos", "beach trip", "a", false, "b"),
		mk(2, "Invoice", "Q2 REPORT appendix", "b", false),
		mk(3, "Notes", "", "b", true, "a"),
	}
}

func names(docs []models.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Name)
	}
	return out
}

func TestFilterSets(t *testing.T) {
	docs := fixtureDocs()
	all := Window{}

	tests := []struct {
		q    Query
		want []string
	}{
		{Mine("a"), []string{"Holiday photos", "Quarterly report"}},
		{Team(), []string{"Notes", "Quarterly report"}},
		{SharedWithMe("b"), []string{"Holiday photos"}},
		{SharedWithMe("a"), []string{"Notes"}},
		{Search("report"), []string{"Invoice", "Quarterly report"}},
		{Search("BEACH"), []string{"Holiday photos"}},
		{ByShareableLink("Invoice-link"), []string{"Invoice"}},
		{All(), []string{"Notes", "Invoice", "Holiday photos", "Quarterly report"}},
	}
	for _, tt := range tests {
		t.Run(tt.q.Kind.String(), func(t *testing.T) {
			got, total := Filter(docs, tt.q, all)
			assert.Equal(t, tt.want, names(got))
			assert.EqualValues(t, len(tt.want), total)
		})
	}
}

func TestSearchMatchesDescriptionOnly(t *testing.T) {
	got, _ := Filter(fixtureDocs(), Search("appendix"), Window{})
	assert.Equal(t, []string{"Invoice"}, names(got))
}

func TestFilterWindow(t *testing.T) {
	docs := fixtureDocs()
	w, err := PageWindow(1, 3)
	require.NoError(t, err)
	got, total := Filter(docs, All(), w)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, []string{"Quarterly report"}, names(got))

	w, err = PageWindow(5, 3)
	require.NoError(t, err)
	got, total = Filter(docs, All(), w)
	assert.EqualValues(t, 4, total)
	assert.Empty(t, got)
	assert.NotNil(t, got)

	got, total = Filter(docs, All(), Window{Offset: -5, Limit: 2})
	assert.EqualValues(t, 4, total)
	assert.Len(t, got, 2)

	got, _ = Filter(docs, All(), Window{})
	assert.Len(t, got, 4)
}

func TestPageWindow(t *testing.T) {
	_, err := PageWindow(-1, 10)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = PageWindow(0, 0)
	assert.ErrorIs(t, err, models.ErrValidation)

	w, err := PageWindow(2, 500)
	require.NoError(t, err)
	assert.Equal(t, Window{Offset: 2 * MaxPageSize, Limit: MaxPageSize}, w)
	assert.Equal(t, 2, w.Page())

	_, err = PageWindow(461168601842738791, 20)
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = PageWindow(math.MaxInt, 1)
	assert.NoError(t, err)
	_, err = PageWindow(math.MaxInt, 2)
	assert.ErrorIs(t, err, models.ErrValidation)

	assert.Equal(t, 0, Window{}.Page())
}

func TestQueryValidate(t *testing.T) {
	assert.NoError(t, Team().Validate())
	assert.NoError(t, All().Validate())
	assert.NoError(t, Mine("a").Validate())
	assert.ErrorIs(t, Mine("").Validate(), models.ErrValidation)
	assert.ErrorIs(t, Search("  ").Validate(), models.ErrValidation)
	assert.ErrorIs(t, ByShareableLink("").Validate(), models.ErrValidation)
	assert.ErrorIs(t, Query{Kind: Kind(99)}.Validate(), models.ErrValidation)
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestMatchesNilDocument(t *testing.T) {
	assert.False(t, All().Matches(nil))
}
