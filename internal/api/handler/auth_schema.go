package handler

import "github.com/modportal/portal-api/internal/core/domain"

type registerRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"s3cret"`
}

// loginRequest accepts the account's username or email. The older
// "username" field is still honoured when username_or_email is empty.
type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email" example:"alice"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password" example:"s3cret"`
}

func (r loginRequest) identifier() string {
	if r.UsernameOrEmail != "" {
		return r.UsernameOrEmail
	}
	return r.Username
}

type userResponse struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required" example:"completed"`
}
