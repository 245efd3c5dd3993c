package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/mail"

	"jobmatch-backend/internal/database"
	"jobmatch-backend/pkg/api"

	"gorm.io/gorm"
)

func validEmail(address string) bool {
	_, err := mail.ParseAddress(address)
	return err == nil
}

func (s *BackendService) GetOrCreateUser(r *http.Request) (any, error) {
	req, err := ParseRequest[api.UserRequest](r)
	if err != nil {
		return nil, err
	}
	if !validEmail(req.Email) {
		return nil, CodedErrorf(http.StatusBadRequest, "invalid email address")
	}

	user, err := database.GetOrCreateUser(r.Context(), s.db, req.Email)
	if err != nil {
		slog.Error("error getting or creating user", "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to get or create user")
	}

	return api.UserResponse{
		Id:           user.Id,
		Email:        user.Email,
		CvResumeText: user.CvResumeText,
		CreationTime: user.CreationTime,
	}, nil
}

func (s *BackendService) AttachCv(r *http.Request) (any, error) {
	userId, err := URLParamUUID(r, "user_id")
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.AttachCvRequest](r)
	if err != nil {
		return nil, err
	}
	if req.CvText == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "cv_text is required")
	}

	identical, err := database.AttachCvResume(r.Context(), s.db, userId, req.CvText)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "user not found")
		}
		slog.Error("error attaching cv", "user_id", userId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to attach cv")
	}

	status := "cv_updated"
	if identical {
		status = "cv_identical"
	}
	return api.AttachCvResponse{Status: status}, nil
}

func (s *BackendService) AddLikedPost(r *http.Request) (any, error) {
	userId, err := URLParamUUID(r, "user_id")
	if err != nil {
		return nil, err
	}
	req, err := ParseRequest[api.LikedPostRequest](r)
	if err != nil {
		return nil, err
	}
	if req.Url == "" {
		return nil, CodedErrorf(http.StatusBadRequest, "url is required")
	}

	post, err := database.AddLikedPost(r.Context(), s.db, userId, req.Url, req.Title, req.Company)
	if err != nil {
		slog.Error("error saving liked post", "user_id", userId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to save liked post")
	}

	return api.LikedPostResponse{
		Id:           post.Id,
		Url:          post.Url,
		Title:        post.Title,
		Company:      post.Company,
		CreationTime: post.CreationTime,
	}, nil
}

func (s *BackendService) RemoveLikedPost(r *http.Request) (any, error) {
	userId, err := URLParamUUID(r, "user_id")
	if err != nil {
		return nil, err
	}
	postId, err := URLParamUUID(r, "post_id")
	if err != nil {
		return nil, err
	}

	if err := database.RemoveLikedPost(r.Context(), s.db, userId, postId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, CodedErrorf(http.StatusNotFound, "liked post not found")
		}
		slog.Error("error deleting liked post", "user_id", userId, "post_id", postId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to delete liked post")
	}
	return nil, nil
}

func (s *BackendService) GetLikedPosts(r *http.Request) (any, error) {
	userId, err := URLParamUUID(r, "user_id")
	if err != nil {
		return nil, err
	}

	posts, err := database.GetLikedPosts(r.Context(), s.db, userId)
	if err != nil {
		slog.Error("error listing liked posts", "user_id", userId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to list liked posts")
	}

	out := make([]api.LikedPostResponse, len(posts))
	for i, post := range posts {
		out[i] = api.LikedPostResponse{
			Id:           post.Id,
			Url:          post.Url,
			Title:        post.Title,
			Company:      post.Company,
			CreationTime: post.CreationTime,
		}
	}
	return out, nil
}

func (s *BackendService) GetPredictions(r *http.Request) (any, error) {
	userId, err := URLParamUUID(r, "user_id")
	if err != nil {
		return nil, err
	}
	params, err := ParseRequestQueryParams[api.PredictionQuery](r)
	if err != nil {
		return nil, err
	}

	records, err := database.GetPredictions(r.Context(), s.db, userId, params.Platform, params.Region)
	if err != nil {
		slog.Error("error listing predictions", "user_id", userId, "error", err)
		return nil, CodedErrorf(http.StatusInternalServerError, "failed to list predictions")
	}

	out := make([]api.PredictionHistoryEntry, len(records))
	for i, record := range records {
		entry := api.PredictionHistoryEntry{
			Id:           record.Id,
			Platform:     record.Platform,
			Region:       record.Region,
			Cluster:      record.Cluster,
			CreationTime: record.CreationTime,
		}
		if len(record.Jobs) > 0 {
			if err := json.Unmarshal(record.Jobs, &entry.Jobs); err != nil {
				slog.Warn("stored prediction has unreadable jobs", "prediction_id", record.Id, "error", err)
			}
		}
		out[i] = entry
	}
	return out, nil
}
