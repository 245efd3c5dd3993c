package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type JobSeekerProfile struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Email        string `gorm:"uniqueIndex;not null"`
	CvResumeText string
	CvHash       string `gorm:"size:64"`
	CreationTime time.Time

	LikedPosts  []LikedPost        `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Predictions []PredictionRecord `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

type LikedPost struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId uuid.UUID `gorm:"type:uuid;index;not null"`

	Url     string `gorm:"not null"`
	Title   string
	Company string

	CreationTime time.Time
}

// PredictionRecord stores one match run. The dedup index rejects re-running
// the same request body against the same dataset for the same user.
type PredictionRecord struct {
	Id     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_prediction_dedup;not null"`

	Platform    string `gorm:"size:50;uniqueIndex:idx_prediction_dedup;not null"`
	Region      string `gorm:"size:50;uniqueIndex:idx_prediction_dedup;not null"`
	ContentHash string `gorm:"size:64;uniqueIndex:idx_prediction_dedup;not null"`

	Cluster int
	Jobs    datatypes.JSON `gorm:"type:jsonb"` // ranked jobs with enrichments, as served

	CreationTime time.Time
}

const (
	TrainingQueued   string = "QUEUED"
	TrainingRunning  string = "TRAINING"
	TrainingComplete string = "TRAINED"
	TrainingFailed   string = "FAILED"
)

type TrainingRun struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Platform string `gorm:"size:50;not null"`
	Region   string `gorm:"size:50;not null"`
	Status   string `gorm:"size:20;not null"`

	Clusters       int
	BestClassifier string
	Scores         datatypes.JSON `gorm:"type:jsonb"` // {"RandomForest":0.91,...}
	Error          string

	CreationTime   time.Time
	CompletionTime sql.NullTime
}
