package sqlstore

import (
	"time"

	"github.com/modportal/portal-api/internal/core/domain"
)

const (
	tasksTable = "tasks"
	bugsTable  = "bugs"
)

type userRow struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'user'"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRow) TableName() string { return "users" }

func (r *userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

// reportRow backs both the tasks and bugs tables; the table is chosen per query.
type reportRow struct {
	ID                    int64   `gorm:"primaryKey"`
	AuthorID              int64   `gorm:"not null"`
	AuthorUsername        string  `gorm:"type:varchar(255);not null"`
	Description           string  `gorm:"type:text;not null"`
	MediaFileID           *string `gorm:"type:varchar(255)"`
	Status                string  `gorm:"type:varchar(20);not null;default:'pending'"`
	AssignedAdminID       *int64
	AssignedAdminUsername *string   `gorm:"type:varchar(255)"`
	CreatedAt             time.Time `gorm:"not null"`
	UpdatedAt             time.Time `gorm:"not null"`
}

func newReportRow(r *domain.Report) *reportRow {
	return &reportRow{
		AuthorID:              r.AuthorID,
		AuthorUsername:        r.AuthorUsername,
		Description:           r.Description,
		MediaFileID:           r.MediaReference,
		Status:                string(r.Status),
		AssignedAdminID:       r.AssignedAdminID,
		AssignedAdminUsername: r.AssignedAdminUsername,
		CreatedAt:             r.CreatedAt,
		UpdatedAt:             r.UpdatedAt,
	}
}

func (r *reportRow) toDomain() *domain.Report {
	return &domain.Report{
		ID:                    r.ID,
		AuthorID:              r.AuthorID,
		AuthorUsername:        r.AuthorUsername,
		Description:           r.Description,
		MediaReference:        r.MediaFileID,
		Status:                domain.Status(r.Status),
		AssignedAdminID:       r.AssignedAdminID,
		AssignedAdminUsername: r.AssignedAdminUsername,
		CreatedAt:             r.CreatedAt.UTC(),
		UpdatedAt:             r.UpdatedAt.UTC(),
	}
}

// applicationRow keeps each questionnaire answer in its own column.
type applicationRow struct {
	ID                   int64     `gorm:"primaryKey"`
	UserID               int64     `gorm:"not null;index"`
	Username             string    `gorm:"type:varchar(255);not null"`
	Position             string    `gorm:"type:varchar(20);not null"`
	Timezone             string    `gorm:"type:text"`
	ModerationExperience string    `gorm:"type:text"`
	OtherProjects        string    `gorm:"type:text"`
	CheatCheckKnowledge  string    `gorm:"type:text"`
	GrifExperience       string    `gorm:"type:text"`
	Age                  string    `gorm:"type:text"`
	AvailableTime        string    `gorm:"type:text"`
	Status               string    `gorm:"type:varchar(20);not null;default:'pending'"`
	CreatedAt            time.Time `gorm:"not null"`
	UpdatedAt            time.Time `gorm:"not null"`
}

func (applicationRow) TableName() string { return "applications" }

func newApplicationRow(a *domain.Application) *applicationRow {
	return &applicationRow{
		UserID:               a.UserID,
		Username:             a.Username,
		Position:             string(a.Position),
		Timezone:             a.Answers[0],
		ModerationExperience: a.Answers[1],
		OtherProjects:        a.Answers[2],
		CheatCheckKnowledge:  a.Answers[3],
		GrifExperience:       a.Answers[4],
		Age:                  a.Answers[5],
		AvailableTime:        a.Answers[6],
		Status:               string(a.Status),
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func (r *applicationRow) toDomain() *domain.Application {
	return &domain.Application{
		ID:       r.ID,
		UserID:   r.UserID,
		Username: r.Username,
		Position: domain.Position(r.Position),
		Answers: domain.Answers{
			r.Timezone,
			r.ModerationExperience,
			r.OtherProjects,
			r.CheatCheckKnowledge,
			r.GrifExperience,
			r.Age,
			r.AvailableTime,
		},
		Status:    domain.Status(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
