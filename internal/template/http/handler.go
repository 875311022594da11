package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oarlockdev/boathouse-backend/internal/auth"
	"github.com/oarlockdev/boathouse-backend/internal/booking"
	"github.com/oarlockdev/boathouse-backend/internal/member"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/clock"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/response"
	"github.com/oarlockdev/boathouse-backend/internal/template"
)

type Handler struct {
	service       template.Service
	memberService member.Service
	loc           *time.Location
}

func NewHandler(service template.Service, memberService member.Service, loc *time.Location) *Handler {
	return &Handler{
		service:       service,
		memberService: memberService,
		loc:           loc,
	}
}

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

// parseDate interprets a calendar date in the club timezone.
func (h *Handler) parseDate(s string) (time.Time, bool) {
	d, err := time.ParseInLocation(dateLayout, s, h.loc)
	return d, err == nil
}

func (h *Handler) List(c *gin.Context) {
	var req ListTemplatesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := template.Filter{
		Weekday:  req.Weekday,
		BoatID:   req.BoatID,
		MemberID: req.MemberID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	templates, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]TemplateResponse, len(templates))
	for i, t := range templates {
		items[i] = NewTemplateResponse(t)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	t, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTemplateResponse(t))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	start, end, err := req.Clocks()
	if err != nil {
		response.Error(c, err)
		return
	}

	t, err := h.service.Create(c.Request.Context(), template.CreateRequest{
		Weekday:     req.Weekday,
		BoatID:      req.BoatID,
		MemberID:    req.MemberID,
		StartClock:  start,
		EndClock:    end,
		BoatLabel:   req.BoatLabel,
		MemberLabel: req.MemberLabel,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewTemplateResponse(t))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	update := template.UpdateRequest{
		Weekday:     req.Weekday,
		BoatID:      req.BoatID,
		ClearBoat:   req.ClearBoat,
		MemberID:    req.MemberID,
		BoatLabel:   req.BoatLabel,
		MemberLabel: req.MemberLabel,
	}
	if req.StartTime != nil {
		start, err := clock.Parse(*req.StartTime)
		if err != nil {
			response.Error(c, template.ErrInvalidClock)
			return
		}
		update.StartClock = &start
	}
	if req.EndTime != nil {
		end, err := clock.Parse(*req.EndTime)
		if err != nil {
			response.Error(c, template.ErrInvalidClock)
			return
		}
		update.EndClock = &end
	}

	t, err := h.service.Update(c.Request.Context(), id, update)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewTemplateResponse(t))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Occurrences expands templates into the concrete calendar slots a
// schedule view renders.
func (h *Handler) Occurrences(c *gin.Context) {
	var req OccurrencesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	from, _ := h.parseDate(req.From)
	to, _ := h.parseDate(req.To)
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not precede from"})
		return
	}

	occurrences, err := h.service.Occurrences(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]OccurrenceResponse, len(occurrences))
	for i, o := range occurrences {
		items[i] = NewOccurrenceResponse(o)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Resolve settles one upcoming occurrence: confirming turns it into a
// standalone booking, cancelling releases the slot.
func (h *Handler) Resolve(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req ResolveOccurrenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, ok := h.parseDate(req.OccurrenceDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid occurrence_date"})
		return
	}

	actor, ok := h.actor(c)
	if !ok {
		return
	}

	conf, err := h.service.Resolve(c.Request.Context(), id, date, template.ConfirmationStatus(req.Outcome), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewConfirmationResponse(conf))
}

func (h *Handler) AddException(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req AddExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	date, ok := h.parseDate(req.ExceptionDate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exception_date"})
		return
	}

	if err := h.service.AddException(c.Request.Context(), id, date, req.Reason); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListExceptions(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req OccurrencesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	from, _ := h.parseDate(req.From)
	to, _ := h.parseDate(req.To)

	exceptions, err := h.service.ListExceptions(c.Request.Context(), id, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ExceptionResponse, len(exceptions))
	for i, e := range exceptions {
		items[i] = NewExceptionResponse(e)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
