// Package types defines the shared domain types for the recruitment pipeline.
package types

import (
	"fmt"
	"time"
)

// ProjectStatus represents the lifecycle state of a recruitment project.
// Transitions are user-driven, never inferred from pipeline progress.
type ProjectStatus string

// Project lifecycle statuses
const (
	StatusActive    ProjectStatus = "active"
	StatusPaused    ProjectStatus = "paused"
	StatusCompleted ProjectStatus = "completed"
	StatusArchived  ProjectStatus = "archived"
)

// ValidProjectStatus reports whether s is a known lifecycle status.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case StatusActive, StatusPaused, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// Project is the top-level tenant-scoped container for one recruitment
// search. It is owned exclusively by its creator.
type Project struct {
	ID          string        `json:"id"`
	OwnerID     string        `json:"owner_id"`
	CompanyName string        `json:"company_name"`
	RoleName    string        `json:"role_name"`
	Status      ProjectStatus `json:"status"`

	// Funnel counters are edited directly by the user and deliberately
	// decoupled from candidate counts.
	Mapped     int `json:"mapped"`
	Approached int `json:"approached"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetStatus applies a user-driven lifecycle transition.
func (p *Project) SetStatus(s ProjectStatus) error {
	if !ValidProjectStatus(s) {
		return fmt.Errorf("invalid project status: %q", s)
	}
	p.Status = s
	p.UpdatedAt = time.Now().UTC()
	return nil
}
