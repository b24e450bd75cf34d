package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
	"github.com/openmusicplayer/videoinfo/internal/videoinfo"
)

// MaxRequestBody caps the JSON body of a lookup request.
const MaxRequestBody = 64 << 10

// VideoInfoService runs one lookup. *videoinfo.Service satisfies it.
type VideoInfoService interface {
	GetVideoInfo(ctx context.Context, rawURL string) (*videoinfo.VideoInfo, error)
}

type VideoInfoHandlers struct {
	service VideoInfoService
}

func NewVideoInfoHandlers(service VideoInfoService) *VideoInfoHandlers {
	return &VideoInfoHandlers{service: service}
}

type VideoInfoRequest struct {
	URL string `json:"url"`
}

// GetVideoInfo handles POST /api/get_video_info.
func (h *VideoInfoHandlers) GetVideoInfo(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeRequest(w, r)
	if err != nil {
		return err
	}

	info, err := h.service.GetVideoInfo(r.Context(), req.URL)
	if err != nil {
		return err
	}

	apperrors.WriteJSON(w, apperrors.GetRequestID(r.Context()), http.StatusOK, info)
	return nil
}

// decodeRequest reads {"url": "..."}. An absent, empty or unparsable body
// is reported the same way as a missing url field.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*VideoInfoRequest, error) {
	if r.Body == nil {
		return nil, apperrors.InvalidURL(apperrors.MsgURLMissing)
	}
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBody)

	var req VideoInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.InvalidURL(apperrors.MsgInvalidURL).WithCause(err)
		}
		if errors.Is(err, io.EOF) {
			return nil, apperrors.InvalidURL(apperrors.MsgURLMissing)
		}
		return nil, apperrors.InvalidURL(apperrors.MsgURLMissing).WithCause(err)
	}
	return &req, nil
}
