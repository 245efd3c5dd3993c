// Package api defines the public request and response types of the HTTP API.
package api

import (
	"time"

	"github.com/google/uuid"
)

type MatchRequest struct {
	Email    string `json:"email"`
	Platform string `json:"platform"`
	Region   string `json:"region"`

	// Text is the CV or profile text to match. Filename, when set, names the
	// uploaded file the text came from.
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`

	EducationLevel string `json:"education_level,omitempty"`

	// RegionFilter restricts results to postings carrying this exact region
	// tag, independent of the region that names the model.
	RegionFilter string `json:"region_filter,omitempty"`
}

type BilingualText struct {
	English string `json:"en"`
	French  string `json:"fr"`
}

type JobEnrichment struct {
	CoverLetter    BilingualText `json:"cover_letter"`
	MissingSkills  BilingualText `json:"missing_skills"`
	MatchingSkills BilingualText `json:"matching_skills"`
}

type MatchedJob struct {
	Url             string         `json:"url"`
	Company         string         `json:"company"`
	Title           string         `json:"title"`
	Location        string         `json:"location"`
	Region          string         `json:"region,omitempty"`
	Level           string         `json:"level"`
	PublicationDate string         `json:"publication_date"`
	Summary         string         `json:"summary"`
	SummaryFr       string         `json:"summary_fr,omitempty"`
	Similarity      float64        `json:"similarity"`
	Enrichment      *JobEnrichment `json:"enrichment,omitempty"`
}

type MatchResponse struct {
	Cluster     int                `json:"cluster"`
	Votes       map[string]int     `json:"votes"`
	Confidences map[string]float64 `json:"confidences"`
	Jobs        []MatchedJob       `json:"jobs"`
	FilteredOut bool               `json:"filtered_out"`
	Persisted   bool               `json:"persisted"`
}

type UserRequest struct {
	Email string `json:"email"`
}

type UserResponse struct {
	Id           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	CvResumeText string    `json:"cv_resume_text,omitempty"`
	CreationTime time.Time `json:"creation_time"`
}

type AttachCvRequest struct {
	CvText string `json:"cv_text"`
}

type AttachCvResponse struct {
	// Status is "cv_identical" when the text matches the stored CV, else
	// "cv_updated".
	Status string `json:"status"`
}

type LikedPostRequest struct {
	Url     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
}

type LikedPostResponse struct {
	Id           uuid.UUID `json:"id"`
	Url          string    `json:"url"`
	Title        string    `json:"title,omitempty"`
	Company      string    `json:"company,omitempty"`
	CreationTime time.Time `json:"creation_time"`
}

// PredictionQuery narrows the match history listing. Both fields optional.
type PredictionQuery struct {
	Platform string `schema:"platform"`
	Region   string `schema:"region"`
}

type PredictionHistoryEntry struct {
	Id           uuid.UUID    `json:"id"`
	Platform     string       `json:"platform"`
	Region       string       `json:"region"`
	Cluster      int          `json:"cluster"`
	Jobs         []MatchedJob `json:"jobs"`
	CreationTime time.Time    `json:"creation_time"`
}

type TrainRequest struct {
	Platform string `json:"platform"`
	Region   string `json:"region"`
}

type TrainSubmitResponse struct {
	Message string    `json:"message"`
	RunId   uuid.UUID `json:"run_id"`
}

type TrainingRunResponse struct {
	Id             uuid.UUID          `json:"id"`
	Platform       string             `json:"platform"`
	Region         string             `json:"region"`
	Status         string             `json:"status"`
	Clusters       int                `json:"clusters,omitempty"`
	BestClassifier string             `json:"best_classifier,omitempty"`
	Scores         map[string]float64 `json:"scores,omitempty"`
	Error          string             `json:"error,omitempty"`
	CreationTime   time.Time          `json:"creation_time"`
	CompletionTime *time.Time         `json:"completion_time,omitempty"`
}

type RequestCodeRequest struct {
	Email string `json:"email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyCodeResponse struct {
	UserId uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}
