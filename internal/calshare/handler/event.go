package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/calshare/internal/calshare/biz"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/middleware"
	"github.com/kart-io/calshare/pkg/response"
)

// EventHandler handles event and comment requests.
type EventHandler struct {
	svc *biz.EventService
}

// NewEventHandler creates the event handler.
func NewEventHandler(svc *biz.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// CreateEventRequest is the request body for creating an event.
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,max=256"`
	Description string `json:"description" validate:"omitempty,max=2048"`
	Location    string `json:"location" validate:"omitempty,max=256"`
	StartsAt    int64  `json:"starts_at" validate:"required"`
	EndsAt      int64  `json:"ends_at" validate:"required"`
	AllDay      bool   `json:"all_day"`
}

// Create creates an event on a calendar.
func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event := &model.Event{
		CalendarID:  c.Param("calendar"),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		AllDay:      req.AllDay,
		CreatedBy:   middleware.UserIDFromContext(c),
	}
	if err := h.svc.Create(c.Request.Context(), event); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, event)
}

// Get returns one event, redacted for times-only viewers.
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("event"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, event)
}

// List returns a page of a calendar's events, redacted for times-only
// viewers.
func (h *EventHandler) List(c *gin.Context) {
	page, pageSize := pagination(c)
	offset, limit := offsetLimit(page, pageSize)

	total, items, err := h.svc.ListForViewer(c.Request.Context(),
		middleware.UserIDFromContext(c), c.Param("calendar"), offset, limit)
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.PageOK(c, items, total, page, pageSize)
}

// UpdateEventRequest is the request body for event updates.
type UpdateEventRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=256"`
	Description *string `json:"description" validate:"omitempty,max=2048"`
	Location    *string `json:"location" validate:"omitempty,max=256"`
	StartsAt    *int64  `json:"starts_at"`
	EndsAt      *int64  `json:"ends_at"`
	AllDay      *bool   `json:"all_day"`
}

// Update modifies an event.
func (h *EventHandler) Update(c *gin.Context) {
	var req UpdateEventRequest
	if !bindJSON(c, &req) {
		return
	}

	event, err := h.svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("event"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if req.AllDay != nil {
		event.AllDay = *req.AllDay
	}

	if err := h.svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), event); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, event)
}

// Delete removes an event.
func (h *EventHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("event")); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, nil)
}

// CommentRequest is the request body for commenting on an event.
type CommentRequest struct {
	Body string `json:"body" validate:"required,max=2048"`
}

// Comment adds a comment to an event.
func (h *EventHandler) Comment(c *gin.Context) {
	var req CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment := &model.EventComment{
		EventID:  c.Param("event"),
		AuthorID: middleware.UserIDFromContext(c),
		Body:     req.Body,
	}
	if err := h.svc.Comment(c.Request.Context(), comment); err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, comment)
}

// Comments lists an event's comments.
func (h *EventHandler) Comments(c *gin.Context) {
	comments, err := h.svc.Comments(c.Request.Context(), c.Param("event"))
	if err != nil {
		response.FailWithError(c, err)
		return
	}
	response.OK(c, comments)
}
