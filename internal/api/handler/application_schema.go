package handler

import (
	"time"

	"github.com/modportal/portal-api/internal/core/domain"
)

// createApplicationRequest carries the questionnaire in its fixed order:
// timezone, moderation_experience, other_projects, cheat_check_knowledge,
// grif_experience, age, available_time.
type createApplicationRequest struct {
	Position string   `json:"position" validate:"required" example:"helper"`
	Answers  []string `json:"answers" validate:"required"`
}

type applicationResponse struct {
	ID                   int64           `json:"id"`
	UserID               int64           `json:"user_id"`
	Username             string          `json:"username"`
	Position             domain.Position `json:"position"`
	Timezone             string          `json:"timezone"`
	ModerationExperience string          `json:"moderation_experience"`
	OtherProjects        string          `json:"other_projects"`
	CheatCheckKnowledge  string          `json:"cheat_check_knowledge"`
	GrifExperience       string          `json:"grif_experience"`
	Age                  string          `json:"age"`
	AvailableTime        string          `json:"available_time"`
	Answers              []string        `json:"answers"`
	Status               domain.Status   `json:"status"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func toApplicationResponse(a *domain.Application) applicationResponse {
	ans := a.Answers
	return applicationResponse{
		ID:                   a.ID,
		UserID:               a.UserID,
		Username:             a.Username,
		Position:             a.Position,
		Timezone:             ans[0],
		ModerationExperience: ans[1],
		OtherProjects:        ans[2],
		CheatCheckKnowledge:  ans[3],
		GrifExperience:       ans[4],
		Age:                  ans[5],
		AvailableTime:        ans[6],
		Answers:              ans[:],
		Status:               a.Status,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}
