package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	backend "jobmatch-backend/internal/api"
	"jobmatch-backend/internal/artifact"
	"jobmatch-backend/internal/cluster"
	"jobmatch-backend/internal/corpus"
	"jobmatch-backend/internal/database"
	"jobmatch-backend/internal/email"
	"jobmatch-backend/internal/ensemble"
	"jobmatch-backend/internal/inference"
	"jobmatch-backend/internal/messaging"
	"jobmatch-backend/internal/storage"
	"jobmatch-backend/internal/verification"
	"jobmatch-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	testPlatforms = []string{"apec", "linkedin", "indeed", "jungle", "hellowork"}
	testRegions   = []string{"france"}
)

func createDB(t *testing.T, create ...any) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)

	for _, c := range create {
		require.NoError(t, db.Create(c).Error)
	}
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedEmbedder struct{ vector []float64 }

func (f *fixedEmbedder) Embed(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

// recordingMailer captures outgoing mail instead of sending it.
type recordingMailer struct {
	to      []string
	bodies  []string
	failing bool
}

var _ email.Mailer = (*recordingMailer)(nil)

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	if m.failing {
		return fmt.Errorf("gateway down")
	}
	m.to = append(m.to, to)
	m.bodies = append(m.bodies, body)
	return nil
}

type testBackend struct {
	router *chi.Mux
	db     *gorm.DB
	queue  *messaging.InMemoryQueue
	codes  *verification.Store
	mailer *recordingMailer
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	objects, err := storage.NewLocalObjectStore(t.TempDir())
	require.NoError(t, err)
	store := artifact.NewStore(objects, testLogger())
	promoteTestModel(t, store)

	db := createDB(t)
	queue := messaging.NewInMemoryQueue()
	codes := verification.NewStore()
	mailer := &recordingMailer{}

	engine := inference.NewEngine(store, &fixedEmbedder{vector: []float64{0.97, 0.03}}, nil, db, testLogger())
	service := backend.NewBackendService(db, engine, queue, codes, mailer, testPlatforms, testRegions)

	router := chi.NewRouter()
	service.AddRoutes(router)
	return &testBackend{router: router, db: db, queue: queue, codes: codes, mailer: mailer}
}

func promoteTestModel(t *testing.T, store *artifact.Store) {
	t.Helper()

	embeddings := [][]float64{
		{1, 0}, {0.95, 0.05}, {0.9, 0.1},
		{0, 1}, {0.05, 0.95}, {0.1, 0.9},
	}
	labels := []int{0, 0, 0, 1, 1, 1}
	postings := make([]corpus.Posting, len(embeddings))
	for i := range postings {
		postings[i] = corpus.Posting{
			Url:     fmt.Sprintf("https://ex.fr/%d", i),
			Title:   fmt.Sprintf("job-%d", i),
			Summary: fmt.Sprintf("summary %d", i),
			Level:   "No Level Required",
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

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	b := newTestBackend(t)
	rec := doJSON(t, b.router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMatchEndpoint(t *testing.T) {
	b := newTestBackend(t)

	rec := doJSON(t, b.router, http.MethodPost, "/match", api.MatchRequest{
		Email:    "alex@example.com",
		Platform: "apec",
		Region:   "france",
		Text:     "profil ingenieur logiciel backend",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res api.MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 0, res.Cluster)
	assert.Len(t, res.Votes, 5)
	assert.NotEmpty(t, res.Jobs)
	assert.True(t, res.Persisted)

	// The run lands in the user's history.
	user, err := database.GetOrCreateUser(context.Background(), b.db, "alex@example.com")
	require.NoError(t, err)
	historyRec := doJSON(t, b.router, http.MethodGet, "/users/"+user.Id.String()+"/predictions", nil)
	require.Equal(t, http.StatusOK, historyRec.Code)

	var history []api.PredictionHistoryEntry
	require.NoError(t, json.Unmarshal(historyRec.Body.Bytes(), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "apec", history[0].Platform)
	assert.NotEmpty(t, history[0].Jobs)

	// A filter on another platform excludes the run.
	filteredRec := doJSON(t, b.router, http.MethodGet, "/users/"+user.Id.String()+"/predictions?platform=linkedin", nil)
	require.Equal(t, http.StatusOK, filteredRec.Code)
	var filtered []api.PredictionHistoryEntry
	require.NoError(t, json.Unmarshal(filteredRec.Body.Bytes(), &filtered))
	assert.Empty(t, filtered)
}

func TestMatchEndpointValidation(t *testing.T) {
	b := newTestBackend(t)

	cases := []struct {
		name string
		req  api.MatchRequest
		code int
	}{
		{"missing platform", api.MatchRequest{Region: "france", Text: "x"}, http.StatusBadRequest},
		{"unknown platform", api.MatchRequest{Platform: "monster", Region: "france", Text: "x"}, http.StatusBadRequest},
		{"unknown region", api.MatchRequest{Platform: "apec", Region: "mars", Text: "x"}, http.StatusBadRequest},
		{"empty text", api.MatchRequest{Platform: "apec", Region: "france", Text: ""}, http.StatusBadRequest},
		{"bad education level", api.MatchRequest{Platform: "apec", Region: "france", Text: "profil dev", EducationLevel: "Doctorat"}, http.StatusBadRequest},
		{"untrained pair", api.MatchRequest{Platform: "linkedin", Region: "france", Text: "profil dev"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, b.router, http.MethodPost, "/match", tc.req)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
		})
	}
}

func TestUserEndpoints(t *testing.T) {
	b := newTestBackend(t)

	rec := doJSON(t, b.router, http.MethodPost, "/users/", api.UserRequest{Email: "alex@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var user api.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	assert.Equal(t, "alex@example.com", user.Email)

	rec = doJSON(t, b.router, http.MethodPost, "/users/", api.UserRequest{Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// CV attach reports identical vs updated.
	rec = doJSON(t, b.router, http.MethodPut, "/users/"+user.Id.String()+"/cv", api.AttachCvRequest{CvText: "go, sql"})
	require.Equal(t, http.StatusOK, rec.Code)
	var cv api.AttachCvResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cv))
	assert.Equal(t, "cv_updated", cv.Status)

	rec = doJSON(t, b.router, http.MethodPut, "/users/"+user.Id.String()+"/cv", api.AttachCvRequest{CvText: "go, sql"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cv))
	assert.Equal(t, "cv_identical", cv.Status)

	rec = doJSON(t, b.router, http.MethodPut, "/users/"+uuid.NewString()+"/cv", api.AttachCvRequest{CvText: "go"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikedPostEndpoints(t *testing.T) {
	b := newTestBackend(t)

	rec := doJSON(t, b.router, http.MethodPost, "/users/", api.UserRequest{Email: "alex@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	var user api.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))

	base := "/users/" + user.Id.String() + "/liked-posts"

	rec = doJSON(t, b.router, http.MethodPost, base+"/", api.LikedPostRequest{Url: "https://ex.fr/1", Title: "Dev"})
	require.Equal(t, http.StatusOK, rec.Code)
	var post api.LikedPostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))

	rec = doJSON(t, b.router, http.MethodPost, base+"/", api.LikedPostRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, b.router, http.MethodGet, base+"/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []api.LikedPostResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &posts))
	assert.Len(t, posts, 1)

	rec = doJSON(t, b.router, http.MethodDelete, base+"/"+post.Id.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, b.router, http.MethodDelete, base+"/"+post.Id.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthFlow(t *testing.T) {
	b := newTestBackend(t)

	rec := doJSON(t, b.router, http.MethodPost, "/auth/request-code", api.RequestCodeRequest{Email: "alex@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, b.mailer.to, 1)
	assert.Equal(t, "alex@example.com", b.mailer.to[0])

	// Lift the code out of the sent mail body.
	var code string
	for _, r := range b.mailer.bodies[0] {
		if r >= '0' && r <= '9' {
			code += string(r)
		}
		if len(code) == 6 {
			break
		}
	}
	require.Len(t, code, 6)

	rec = doJSON(t, b.router, http.MethodPost, "/auth/verify-code", api.VerifyCodeRequest{Email: "alex@example.com", Code: code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var verified api.VerifyCodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verified))
	assert.Equal(t, "alex@example.com", verified.Email)
	assert.NotEqual(t, uuid.Nil, verified.UserId)

	// codes are single use
	rec = doJSON(t, b.router, http.MethodPost, "/auth/verify-code", api.VerifyCodeRequest{Email: "alex@example.com", Code: code})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, b.router, http.MethodPost, "/auth/verify-code", api.VerifyCodeRequest{Email: "alex@example.com", Code: "999999"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSubmitTrainingJob(t *testing.T) {
	b := newTestBackend(t)

	rec := doJSON(t, b.router, http.MethodPost, "/train/", api.TrainRequest{Platform: "apec", Region: "france"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var submitted api.TrainSubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.NotEqual(t, uuid.Nil, submitted.RunId)

	// The run is queued and the task is on the queue.
	rec = doJSON(t, b.router, http.MethodGet, "/train/"+submitted.RunId.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var run api.TrainingRunResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, database.TrainingQueued, run.Status)

	select {
	case task := <-b.queue.Tasks():
		var payload messaging.TrainTaskPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))
		assert.Equal(t, submitted.RunId, payload.RunId)
		assert.Equal(t, "apec", payload.Platform)
	default:
		t.Fatal("expected a queued training task")
	}

	rec = doJSON(t, b.router, http.MethodPost, "/train/", api.TrainRequest{Platform: "monster", Region: "france"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, b.router, http.MethodGet, "/train/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
