package handlers

import (
	"github.com/gin-gonic/gin"

	"linksoc/internal/domain/reprint"
	"linksoc/internal/domain/rules"
	"linksoc/internal/domain/tasks"
	"linksoc/internal/infrastructure/http/v1/dto"
)

// ReprintHandler handles the reprint queue endpoints.
type ReprintHandler struct {
	*BaseHandler
	service *reprint.Service
}

// NewReprintHandler creates a new reprint handler.
func NewReprintHandler(base *BaseHandler, service *reprint.Service) *ReprintHandler {
	return &ReprintHandler{BaseHandler: base, service: service}
}

// Queue handles GET /reprint
func (h *ReprintHandler) Queue(c *gin.Context) {
	items, err := h.service.Queue(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.NoStore(c)
	h.OK(c, dto.FromQueue(items))
}

// Enqueue handles POST /reprint
func (h *ReprintHandler) Enqueue(c *gin.Context) {
	var req dto.EnqueueRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Enqueue(c.Request.Context(), req.ID); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.SuccessResponse{Success: true})
}

// Labels handles GET /reprint/labels
func (h *ReprintHandler) Labels(c *gin.Context) {
	res, err := h.service.Labels(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.NoStore(c)
	h.OK(c, dto.FromResolved(res.LookupResult, res.Total))
}

// Clear handles POST /reprint/clear
func (h *ReprintHandler) Clear(c *gin.Context) {
	var req dto.ReprintClearRequest
	// An empty body clears the whole queue.
	if c.Request.ContentLength != 0 {
		if !h.BindJSON(c, &req) {
			return
		}
	}

	cleared, err := h.service.Clear(c.Request.Context(), req.IDs)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ClearedResponse{Success: true, Cleared: cleared})
}

// TaskHandler handles field task endpoints.
type TaskHandler struct {
	*BaseHandler
	service *tasks.Service
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(base *BaseHandler, service *tasks.Service) *TaskHandler {
	return &TaskHandler{BaseHandler: base, service: service}
}

// Completed handles GET /tasks
func (h *TaskHandler) Completed(c *gin.Context) {
	list, err := h.service.Completed(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.NoStore(c)
	h.OK(c, dto.TasksResponse{Success: true, Data: list, Total: len(list)})
}

// Labels handles GET /tasks/:id/labels
func (h *TaskHandler) Labels(c *gin.Context) {
	res, err := h.service.Labels(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.NoStore(c)
	h.OK(c, dto.FromResolved(res.LookupResult, res.Total))
}

// RuleHandler handles flow-status rule endpoints.
type RuleHandler struct {
	*BaseHandler
	service *rules.Service
}

// NewRuleHandler creates a new rule handler.
func NewRuleHandler(base *BaseHandler, service *rules.Service) *RuleHandler {
	return &RuleHandler{BaseHandler: base, service: service}
}

// List handles GET /rules?filter=
func (h *RuleHandler) List(c *gin.Context) {
	var q dto.RulesQuery
	if !h.BindQuery(c, &q) {
		return
	}

	list, err := h.service.List(c.Request.Context(), q.Filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.RulesResponse{Data: list, Total: len(list)})
}
