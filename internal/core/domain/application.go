package domain

import (
	"strings"
	"time"
)

// AnswerCount is the fixed size of the application questionnaire.
const AnswerCount = 7

// Position is the staff role an applicant asks for.
type Position string

const (
	PositionHelper    Position = "helper"
	PositionModerator Position = "moderator"
)

func (p Position) Valid() bool {
	return p == PositionHelper || p == PositionModerator
}

// Answers holds the questionnaire in its fixed order: timezone, moderation
// experience, other projects, cheat-check knowledge, griefing experience, age,
// available time.
type Answers [AnswerCount]string

// Application is a request to join the staff.
type Application struct {
	ID        int64     `json:"id" bson:"_id"`
	UserID    int64     `json:"user_id" bson:"user_id"`
	Username  string    `json:"username" bson:"username"`
	Position  Position  `json:"position" bson:"position"`
	Answers   Answers   `json:"answers" bson:"answers"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (a *Application) OwnerID() int64 { return a.UserID }

func (a *Application) CurrentStatus() Status { return a.Status }

// ParsePosition accepts the canonical names and the labels
// the Telegram bot offers (Хелпер, Модератор), case-insensitively.
func ParsePosition(s string) (Position, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "helper", "хелпер":
		return PositionHelper, true
	case "moderator", "модератор":
		return PositionModerator, true
	}
	return "", false
}
