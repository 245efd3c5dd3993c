package inference_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"jobmatch-backend/internal/artifact"
	"jobmatch-backend/internal/cluster"
	"jobmatch-backend/internal/corpus"
	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/embedding"
	"jobmatch-backend/internal/enrich"
	"jobmatch-backend/internal/ensemble"
	"jobmatch-backend/internal/inference"
	"jobmatch-backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedEmbedder returns the same vector for any input.
type fixedEmbedder struct {
	vector []float64
}

func (f *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// promoteTestModel builds and promotes a two-cluster model. Cluster 0 points
// toward (1,0), cluster 1 toward (0,1). Posting i is named job-i; even
// postings are tagged ile_de_france, odd ones occitanie.
func promoteTestModel(t *testing.T, store *artifact.Store, levels []string) {
	t.Helper()

	embeddings := [][]float64{
		{1, 0}, {0.95, 0.05}, {0.9, 0.1},
		{0, 1}, {0.05, 0.95}, {0.1, 0.9},
	}
	labels := []int{0, 0, 0, 1, 1, 1}

	postings := make([]corpus.Posting, len(embeddings))
	for i := range postings {
		level := "No Level Required"
		if i < len(levels) {
			level = levels[i]
		}
		region := "ile_de_france"
		if i%2 == 1 {
			region = "occitanie"
		}
		postings[i] = corpus.Posting{
			Url:     fmt.Sprintf("https://ex.fr/%d", i),
			Title:   fmt.Sprintf("job-%d", i),
			Summary: fmt.Sprintf("summary %d", i),
			Region:  region,
			Level:   level,
		}
	}

	res, err := ensemble.Train(embeddings, labels, 50)
	require.NoError(t, err)

	bundle := &artifact.Bundle{
		Cluster:     cluster.FitKMeans(embeddings, 2, cluster.DefaultSeed),
		Embeddings:  embeddings,
		Labels:      labels,
		Postings:    postings,
		Classifiers: res.Roster,
	}
	ctx := context.Background()
	require.NoError(t, store.Stage(ctx, "apec", "france", bundle))
	promoted, err := store.Promote(ctx, "apec", "france")
	require.NoError(t, err)
	require.True(t, promoted.Ok())
}

func newTestEngine(t *testing.T, levels []string, db *gorm.DB) *inference.Engine {
	t.Helper()
	objects, err := storage.NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)
	store := artifact.NewStore(objects, testLogger())
	promoteTestModel(t, store, levels)

	embedder := &fixedEmbedder{vector: []float64{0.97, 0.03}}
	return inference.NewEngine(store, embedder, nil, db, testLogger())
}

func TestMatchRanksChosenCluster(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	res, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec",
		Region:   "france",
		Text:     "profil ingenieur logiciel backend",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Cluster)
	assert.Len(t, res.Votes, 5)
	require.Len(t, res.Jobs, 3)

	// Only cluster 0 postings, best similarity first.
	for _, job := range res.Jobs {
		assert.Contains(t, []string{"job-0", "job-1", "job-2"}, job.Title)
	}
	for i := 1; i < len(res.Jobs); i++ {
		assert.GreaterOrEqual(t, res.Jobs[i-1].Similarity, res.Jobs[i].Similarity)
	}

	// Similarity is a 0..100 score rounded to two decimals.
	for _, job := range res.Jobs {
		assert.Greater(t, job.Similarity, 90.0)
		assert.LessOrEqual(t, job.Similarity, 100.0)
	}
}

func TestMatchEmptyQuery(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	_, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france", Text: "",
	})
	assert.ErrorIs(t, err, inference.ErrEmptyQuery)

	// Text that normalizes to nothing is also empty.
	_, err = engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france", Text: "le la les 123",
	})
	assert.ErrorIs(t, err, inference.ErrEmptyQuery)
}

func TestMatchUnknownModel(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	_, err := engine.Match(context.Background(), inference.Request{
		Platform: "indeed", Region: "france", Text: "profil dev",
	})
	assert.ErrorIs(t, err, artifact.ErrArtifactNotFound)
}

func TestMatchInvalidEducationLevel(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	_, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france", Text: "profil dev",
		EducationLevel: "Doctorat",
	})
	assert.ErrorIs(t, err, inference.ErrInvalidEducationLevel)
}

func TestMatchEducationFilter(t *testing.T) {
	// Cluster 0 postings require Bac+2, Master, Bac+4.
	engine := newTestEngine(t, []string{"Bac+2", "Master", "Bac+4"}, nil)

	res, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france",
		Text:           "profil dev",
		EducationLevel: "bac+3",
	})
	require.NoError(t, err)

	// Only the Bac+2 posting is at or below the candidate's level.
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "job-0", res.Jobs[0].Title)
	assert.False(t, res.FilteredOut)
}

func TestMatchRegionFilter(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	res, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france",
		Text:         "profil dev",
		RegionFilter: "ile_de_france",
	})
	require.NoError(t, err)

	// Of cluster 0's three postings only job-0 and job-2 carry the tag.
	require.Len(t, res.Jobs, 2)
	for _, job := range res.Jobs {
		assert.Equal(t, "ile_de_france", job.Region)
		assert.Contains(t, []string{"job-0", "job-2"}, job.Title)
	}
	assert.False(t, res.FilteredOut)
}

func TestMatchRegionFilterFallback(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	res, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france",
		Text:         "profil dev",
		RegionFilter: "bretagne",
	})
	require.NoError(t, err)

	// No posting carries the tag, so the best unfiltered matches come back.
	assert.True(t, res.FilteredOut)
	assert.Len(t, res.Jobs, 3)
}

func TestMatchEducationAndRegionFilters(t *testing.T) {
	// Cluster 0 postings require Bac+2, Bac+2, Master.
	engine := newTestEngine(t, []string{"Bac+2", "Bac+2", "Master"}, nil)

	res, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france",
		Text:           "profil dev",
		EducationLevel: "Bac+3",
		RegionFilter:   "ile_de_france",
	})
	require.NoError(t, err)

	// job-1 matches on level but not region, job-2 on region but not level.
	require.Len(t, res.Jobs, 1)
	assert.Equal(t, "job-0", res.Jobs[0].Title)
	assert.False(t, res.FilteredOut)
}

func TestMatchFilterFallback(t *testing.T) {
	// Every cluster 0 posting requires more than the candidate has.
	engine := newTestEngine(t, []string{"Master", "Master", "Master"}, nil)

	res, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france",
		Text:           "profil dev",
		EducationLevel: "Bac+2",
	})
	require.NoError(t, err)

	// The best unfiltered matches are served instead of an empty page.
	assert.True(t, res.FilteredOut)
	assert.Len(t, res.Jobs, 3)
}

func TestMatchPersistsAndDedups(t *testing.T) {
	db, err := database.NewDatabase("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	user, err := database.GetOrCreateUser(context.Background(), db, "alex@example.com")
	require.NoError(t, err)

	engine := newTestEngine(t, nil, db)

	req := inference.Request{
		UserId:   user.Id,
		Platform: "apec", Region: "france",
		Text:     "profil ingenieur logiciel",
		Filename: "cv.pdf",
	}

	first, err := engine.Match(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, first.Persisted)

	// The same upload again still serves results but is not re-recorded.
	second, err := engine.Match(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.Persisted)
	assert.Equal(t, first.Cluster, second.Cluster)

	records, err := database.GetPredictions(context.Background(), db, user.Id, "", "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// emptyEmbedder simulates a provider that answers with no vectors.
type emptyEmbedder struct{}

func (emptyEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return [][]float64{}, nil
}

func TestMatchEmptyEmbeddingResult(t *testing.T) {
	objects, err := storage.NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)
	store := artifact.NewStore(objects, testLogger())
	promoteTestModel(t, store, nil)

	engine := inference.NewEngine(store, emptyEmbedder{}, nil, nil, testLogger())

	_, err = engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france", Text: "profil dev",
	})
	assert.ErrorIs(t, err, embedding.ErrProvider)
}

// fixedGenerator returns the same bilingual answer for every prompt.
type fixedGenerator struct{}

func (fixedGenerator) Generate(context.Context, string) (string, error) {
	return "### English Version\nen\n### Version Française\nfr\n", nil
}

func TestMatchEnrichesResults(t *testing.T) {
	objects, err := storage.NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)
	store := artifact.NewStore(objects, testLogger())
	promoteTestModel(t, store, nil)

	enricher := enrich.NewOrchestrator(fixedGenerator{}, testLogger())
	engine := inference.NewEngine(store, &fixedEmbedder{vector: []float64{0.97, 0.03}}, enricher, nil, testLogger())

	res, err := engine.Match(context.Background(), inference.Request{
		Platform: "apec", Region: "france", Text: "profil dev",
	})
	require.NoError(t, err)

	require.Len(t, res.Jobs, 3)
	for _, job := range res.Jobs {
		require.NotNil(t, job.Enrichment)
		assert.Equal(t, "en", job.Enrichment.CoverLetter.English)
		assert.Equal(t, "fr", job.Enrichment.CoverLetter.French)
	}
}
