package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oarlockdev/boathouse-backend/internal/auth"
	"github.com/oarlockdev/boathouse-backend/internal/booking"
	"github.com/oarlockdev/boathouse-backend/internal/member"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/response"
)

type Handler struct {
	service       booking.Service
	memberService member.Service
}

func NewHandler(service booking.Service, memberService member.Service) *Handler {
	return &Handler{
		service:       service,
		memberService: memberService,
	}
}

// actor resolves the authenticated member into an explicit booking
// actor (member ID + admin flag).
func (h *Handler) actor(c *gin.Context) (booking.Actor, bool) {
	memberID := auth.GetMemberID(c)
	if memberID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return booking.Actor{}, false
	}

	m, err := h.memberService.GetByID(c.Request.Context(), memberID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "member not found"})
		return booking.Actor{}, false
	}

	return booking.Actor{MemberID: m.ID, IsAdmin: m.IsAdmin}, true
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	// Non-admin members only ever see their own bookings.
	filterMemberID := actor.MemberID
	if actor.IsAdmin {
		filterMemberID = req.MemberID
	}

	filter := booking.Filter{
		BoatID:        req.BoatID,
		MemberID:      filterMemberID,
		UsageStatus:   req.UsageStatus,
		StartTimeFrom: req.StartTimeFrom,
		StartTimeTo:   req.StartTimeTo,
		Page:          req.Page,
		PageSize:      req.PageSize,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		BoatID:    req.BoatID,
		MemberID:  actor.MemberID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

// CreateBatch books the same interval on several boats. Boats succeed
// or fail independently; the response lists both so the member can see
// exactly which boats conflicted.
func (h *Handler) CreateBatch(c *gin.Context) {
	var req BatchCreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	results, err := h.service.CreateBatch(c.Request.Context(), req.BoatIDs, actor.MemberID, req.StartTime, req.EndTime, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := BatchCreateBookingResponse{Items: make([]BatchItemResponse, len(results))}
	status := http.StatusCreated
	for i, res := range results {
		item := BatchItemResponse{BoatID: res.BoatID}
		if res.Err != nil {
			item.Error = res.Err.Error()
			status = http.StatusMultiStatus
		} else {
			br := NewBookingResponse(res.Booking)
			item.Booking = &br
		}
		resp.Items[i] = item
	}

	c.JSON(status, resp)
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}
	if !actor.IsAdmin && b.MemberID != actor.MemberID {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	b, err := h.service.Update(c.Request.Context(), id, booking.UpdateRequest{
		BoatID:    req.BoatID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}, actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actor); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ResolveUsage confirms or cancels a completed outing.
func (h *Handler) ResolveUsage(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req ResolveUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	b, err := h.service.ResolveUsage(c.Request.Context(), id, booking.UsageStatus(req.Outcome), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}
