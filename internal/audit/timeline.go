package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimelineFilters narrows the audit trail query.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	ActorID  string
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// TimelineRow is one entry of the audit trail.
type TimelineRow struct {
	At       time.Time      `json:"at"`
	ActorID  string         `json:"actor_id"`
	Action   string         `json:"action"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entity_id"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// PagingInfo carries window metadata for the timeline.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
}

// Result wraps timeline rows with paging information.
type Result struct {
	Rows   []TimelineRow `json:"rows"`
	Paging PagingInfo    `json:"paging"`
}

// Timeline reads a filtered page of the audit trail. It fetches one row past
// the page to learn whether a next page exists.
func (r *Recorder) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}

	clauses := []string{"TRUE"}
	args := []any{}
	if !filters.From.IsZero() {
		args = append(args, filters.From)
		clauses = append(clauses, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if !filters.To.IsZero() {
		args = append(args, filters.To)
		clauses = append(clauses, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}
	if filters.ActorID != "" {
		args = append(args, filters.ActorID)
		clauses = append(clauses, fmt.Sprintf("actor_id::text = $%d", len(args)))
	}
	if filters.Entity != "" {
		args = append(args, filters.Entity)
		clauses = append(clauses, fmt.Sprintf("entity = $%d", len(args)))
	}
	if filters.Action != "" {
		args = append(args, filters.Action)
		clauses = append(clauses, fmt.Sprintf("action = $%d", len(args)))
	}
	args = append(args, pageSize+1, (page-1)*pageSize)

	query := fmt.Sprintf(
		`SELECT actor_id, action, entity, entity_id, meta, occurred_at
		 FROM audit_logs WHERE %s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d`,
		strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	var out []TimelineRow
	for rows.Next() {
		var row TimelineRow
		var meta []byte
		if err := rows.Scan(&row.ActorID, &row.Action, &row.Entity, &row.EntityID, &meta, &row.At); err != nil {
			return Result{}, err
		}
		if len(meta) > 0 {
			_ = json.Unmarshal(meta, &row.Meta)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	hasNext := len(out) > pageSize
	if hasNext {
		out = out[:pageSize]
	}
	return Result{
		Rows:   out,
		Paging: PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext},
	}, nil
}
