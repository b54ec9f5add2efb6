package domain

import "time"

// Report is the record shape shared by tasks and bugs.
type Report struct {
	ID                    int64     `json:"id" bson:"_id"`
	AuthorID              int64     `json:"author_id" bson:"author_id"`
	AuthorUsername        string    `json:"author_username" bson:"author_username"`
	Description           string    `json:"description" bson:"description"`
	MediaReference        *string   `json:"media_file_id" bson:"media_reference,omitempty"`
	Status                Status    `json:"status" bson:"status"`
	AssignedAdminID       *int64    `json:"assigned_admin_id" bson:"assigned_admin_id,omitempty"`
	AssignedAdminUsername *string   `json:"assigned_admin_username" bson:"assigned_admin_username,omitempty"`
	CreatedAt             time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" bson:"updated_at"`
}

// OwnerID returns the id of the user who submitted the report.
func (r *Report) OwnerID() int64 { return r.AuthorID }

// Task is a work-order report.
type Task = Report

// Bug is a defect report, usually carrying a screenshot.
type Bug = Report

func (r *Report) CurrentStatus() Status { return r.Status }
