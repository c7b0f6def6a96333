package dto

import (
	"time"

	"linksoc/internal/domain/labels"
	"linksoc/internal/domain/reprint"
	"linksoc/internal/domain/rules"
	"linksoc/internal/domain/tasks"
)

// --- Reprint ---

// EnqueueRequest for POST /reprint.
type EnqueueRequest struct {
	ID string `json:"id" binding:"required"`
}

// ReprintClearRequest for POST /reprint/clear. Empty IDs clears the whole queue.
type ReprintClearRequest struct {
	IDs []string `json:"ids"`
}

// ReprintItemResponse represents a queued scan.
type ReprintItemResponse struct {
	ID        string    `json:"id"`
	ScannedAt time.Time `json:"timestamp"`
}

// QueueResponse for GET /reprint.
type QueueResponse struct {
	Success bool                  `json:"success"`
	Data    []ReprintItemResponse `json:"data"`
	Total   int                   `json:"total"`
}

// FromQueue converts queue items to response.
func FromQueue(items []reprint.Item) QueueResponse {
	data := make([]ReprintItemResponse, len(items))
	for i, it := range items {
		data[i] = ReprintItemResponse{ID: it.ID, ScannedAt: it.ScannedAt}
	}
	return QueueResponse{Success: true, Data: data, Total: len(items)}
}

// ResolvedLabelsResponse for GET /reprint/labels and GET /tasks/:id/labels.
type ResolvedLabelsResponse struct {
	Success  bool            `json:"success"`
	Found    []LabelResponse `json:"found"`
	NotFound []string        `json:"notFound"`
	Total    int             `json:"total"`
}

// FromResolved converts resolved labels to response.
func FromResolved(r labels.LookupResult, total int) ResolvedLabelsResponse {
	return ResolvedLabelsResponse{
		Success:  true,
		Found:    FromLabels(r.Found),
		NotFound: nonNil(r.NotFound),
		Total:    total,
	}
}

// ClearedResponse for POST /reprint/clear.
type ClearedResponse struct {
	Success bool `json:"success"`
	Cleared int  `json:"cleared"`
}

// --- Tasks ---

// TasksResponse for GET /tasks.
type TasksResponse struct {
	Success bool         `json:"success"`
	Data    []tasks.Task `json:"data"`
	Total   int          `json:"total"`
}

// --- Rules ---

// RulesQuery for GET /rules.
type RulesQuery struct {
	Filter string `form:"filter"`
}

// RulesResponse for GET /rules.
type RulesResponse struct {
	Data  []rules.Rule `json:"data"`
	Total int          `json:"total"`
}
