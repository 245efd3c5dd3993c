package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicatePrediction is returned when a user re-submits the same request
// against the same dataset. Callers treat it as already-done, not a failure.
var ErrDuplicatePrediction = errors.New("prediction already recorded for this input")

// PredictionContentHash identifies a request body for dedup. Uploads hash the
// file name, free-text requests hash the text itself.
func PredictionContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NormalizeEmail canonicalizes an address so casing and stray whitespace
// cannot split one person across two profiles.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetOrCreateUser looks a profile up by email, creating it on first contact.
// The email is normalized before use.
func GetOrCreateUser(ctx context.Context, db *gorm.DB, email string) (*JobSeekerProfile, error) {
	email = NormalizeEmail(email)

	var user JobSeekerProfile
	err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	user = JobSeekerProfile{
		Id:           uuid.New(),
		Email:        email,
		CreationTime: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("could not create user: %w", err)
	}
	// Re-read in case a concurrent create won the conflict.
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("could not load user after create: %w", err)
	}
	return &user, nil
}

// AttachCvResume stores the user's CV text and reports whether it changed
// since the last upload.
func AttachCvResume(ctx context.Context, db *gorm.DB, userId uuid.UUID, cvText string) (identical bool, err error) {
	var user JobSeekerProfile
	if err := db.WithContext(ctx).First(&user, "id = ?", userId).Error; err != nil {
		return false, fmt.Errorf("could not load user: %w", err)
	}

	hash := PredictionContentHash(cvText)
	if user.CvHash == hash {
		return true, nil
	}

	updates := map[string]any{"cv_resume_text": cvText, "cv_hash": hash}
	if err := db.WithContext(ctx).Model(&JobSeekerProfile{Id: userId}).Updates(updates).Error; err != nil {
		return false, fmt.Errorf("could not update cv: %w", err)
	}
	return false, nil
}

func AddLikedPost(ctx context.Context, db *gorm.DB, userId uuid.UUID, url, title, company string) (*LikedPost, error) {
	post := LikedPost{
		Id:           uuid.New(),
		UserId:       userId,
		Url:          url,
		Title:        title,
		Company:      company,
		CreationTime: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, fmt.Errorf("could not save liked post: %w", err)
	}
	return &post, nil
}

func RemoveLikedPost(ctx context.Context, db *gorm.DB, userId, postId uuid.UUID) error {
	res := db.WithContext(ctx).Where("id = ? AND user_id = ?", postId, userId).Delete(&LikedPost{})
	if res.Error != nil {
		return fmt.Errorf("could not delete liked post: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func GetLikedPosts(ctx context.Context, db *gorm.DB, userId uuid.UUID) ([]LikedPost, error) {
	var posts []LikedPost
	if err := db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("creation_time DESC").
		Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("could not query liked posts: %w", err)
	}
	return posts, nil
}

// AddPredictionResult records a served match run. The unique dedup index is
// the source of truth; the pre-check only gives a cleaner error on the common
// path.
func AddPredictionResult(ctx context.Context, db *gorm.DB, userId uuid.UUID, platform, region, contentHash string, clusterLabel int, jobs []byte) error {
	var count int64
	if err := db.WithContext(ctx).Model(&PredictionRecord{}).
		Where("user_id = ? AND platform = ? AND region = ? AND content_hash = ?", userId, platform, region, contentHash).
		Count(&count).Error; err != nil {
		return fmt.Errorf("could not check for existing prediction: %w", err)
	}
	if count > 0 {
		return ErrDuplicatePrediction
	}

	record := PredictionRecord{
		Id:           uuid.New(),
		UserId:       userId,
		Platform:     platform,
		Region:       region,
		ContentHash:  contentHash,
		Cluster:      clusterLabel,
		Jobs:         datatypes.JSON(jobs),
		CreationTime: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePrediction
		}
		return fmt.Errorf("could not save prediction: %w", err)
	}
	return nil
}

// GetPredictions lists a user's match history, newest first. Empty platform
// or region means no filter on that column.
func GetPredictions(ctx context.Context, db *gorm.DB, userId uuid.UUID, platform, region string) ([]PredictionRecord, error) {
	query := db.WithContext(ctx).Where("user_id = ?", userId)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if region != "" {
		query = query.Where("region = ?", region)
	}

	var records []PredictionRecord
	if err := query.Order("creation_time DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("could not query predictions: %w", err)
	}
	return records, nil
}

func CreateTrainingRun(ctx context.Context, db *gorm.DB, platform, region string) (*TrainingRun, error) {
	run := TrainingRun{
		Id:           uuid.New(),
		Platform:     platform,
		Region:       region,
		Status:       TrainingQueued,
		CreationTime: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(&run).Error; err != nil {
		return nil, fmt.Errorf("could not create training run: %w", err)
	}
	return &run, nil
}

func UpdateTrainingRunStatus(ctx context.Context, db *gorm.DB, runId uuid.UUID, status string, updates map[string]any) error {
	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = status
	if status == TrainingComplete || status == TrainingFailed {
		updates["completion_time"] = time.Now().UTC()
	}

	if err := db.WithContext(ctx).Model(&TrainingRun{Id: runId}).Updates(updates).Error; err != nil {
		slog.Error("error updating training run status", "run_id", runId, "status", status, "error", err)
		return err
	}
	return nil
}

func GetTrainingRun(ctx context.Context, db *gorm.DB, runId uuid.UUID) (*TrainingRun, error) {
	var run TrainingRun
	if err := db.WithContext(ctx).First(&run, "id = ?", runId).Error; err != nil {
		return nil, err
	}
	return &run, nil
}
