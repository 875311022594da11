package http

import (
	"time"

	"github.com/oarlockdev/boathouse-backend/internal/notice"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/request"
)

type ListNoticesRequest struct {
	request.ListParams
	Keyword    string `form:"keyword"`
	PinnedOnly bool   `form:"pinned_only"`
}

type NoticeResponse struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Pinned     bool      `json:"pinned"`
	PostedBy   string    `json:"posted_by"`
	PosterName string    `json:"poster_name"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewNoticeResponse(n *notice.Notice) NoticeResponse {
	return NoticeResponse{
		ID:         n.ID,
		Title:      n.Title,
		Body:       n.Body,
		Pinned:     n.Pinned,
		PostedBy:   n.PostedBy,
		PosterName: n.PosterName,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

type CreateNoticeRequest struct {
	Title  string `json:"title" binding:"required"`
	Body   string `json:"body" binding:"required"`
	Pinned bool   `json:"pinned"`
}

type UpdateNoticeRequest struct {
	Title  *string `json:"title"`
	Body   *string `json:"body"`
	Pinned *bool   `json:"pinned"`
}
