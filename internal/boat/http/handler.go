package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oarlockdev/boathouse-backend/internal/boat"
	"github.com/oarlockdev/boathouse-backend/internal/pkg/response"
)

type Handler struct {
	service boat.Service
}

func NewHandler(service boat.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(c *gin.Context) {
	var req ListBoatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter := boat.Filter{
		BoatType:  req.BoatType,
		UsageType: req.UsageType,
		InService: req.InService,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}

	boats, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BoatResponse, len(boats))
	for i, b := range boats {
		items[i] = NewBoatResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
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

	c.JSON(http.StatusOK, NewBoatResponse(b))
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateBoatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	inService := true
	if req.InService != nil {
		inService = *req.InService
	}

	b, err := h.service.Create(c.Request.Context(), boat.CreateRequest{
		Code:      req.Code,
		Name:      req.Name,
		BoatType:  req.BoatType,
		UsageType: req.UsageType,
		InService: inService,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBoatResponse(b))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req UpdateBoatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	b, err := h.service.Update(c.Request.Context(), id, boat.UpdateRequest{
		Code:      req.Code,
		Name:      req.Name,
		BoatType:  req.BoatType,
		UsageType: req.UsageType,
		InService: req.InService,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBoatResponse(b))
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

func (h *Handler) GrantPermission(c *gin.Context) {
	boatID := c.Param("id")
	if _, err := uuid.Parse(boatID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var req GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := h.service.GrantPermission(c.Request.Context(), boatID, req.MemberID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) RevokePermission(c *gin.Context) {
	boatID := c.Param("id")
	memberID := c.Param("memberId")
	if _, err := uuid.Parse(boatID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}
	if _, err := uuid.Parse(memberID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.RevokePermission(c.Request.Context(), boatID, memberID); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPermissions(c *gin.Context) {
	boatID := c.Param("id")
	if _, err := uuid.Parse(boatID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	grants, err := h.service.ListPermissions(c.Request.Context(), boatID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PermissionResponse, len(grants))
	for i, g := range grants {
		items[i] = PermissionResponse{
			BoatID:    g.BoatID,
			MemberID:  g.MemberID,
			CreatedAt: g.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
