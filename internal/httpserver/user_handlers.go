package httpserver

import (
	"net/http"

	"messenger/internal/domain"
	"messenger/internal/service"
)

type profileUpdateRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
	AvatarURL   *string `json:"avatar_url"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// @Summary      Own profile
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  service.UserView
// @Router       /users/profile [get]
func handleGetProfile(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userSvc.GetByID(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service.ToUserView(u, true))
	}
}

// @Summary      Update own profile
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body profileUpdateRequest true "Fields to change"
// @Success      200  {object}  service.UserView
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /users/profile [put]
func handleUpdateProfile(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req profileUpdateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		u, err := userSvc.UpdateProfile(r.Context(), CurrentUser(r).ID, domain.ProfileUpdate{
			DisplayName: req.DisplayName,
			Email:       req.Email,
			AvatarURL:   req.AvatarURL,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, service.ToUserView(u, true))
	}
}

// @Summary      Change password
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Param        input body passwordChangeRequest true "Current and new password"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /users/password [put]
func handleChangePassword(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req passwordChangeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := userSvc.ChangePassword(r.Context(), CurrentUser(r).ID, req.CurrentPassword, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
	}
}

// @Summary      Delete own account
// @Description  Anonymizes the account and revokes the current token
// @Tags         users
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /users/delete [post]
func handleDeleteAccount(userSvc *service.UserService, authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := userSvc.SoftDelete(r.Context(), CurrentUser(r).ID); err != nil {
			writeError(w, err)
			return
		}
		if err := authSvc.Logout(r.Context(), currentClaims(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
	}
}

// @Summary      Search users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        query query string true "Substring of username or display name"
// @Success      200  {object}  map[string][]service.UserView
// @Router       /users/search [get]
func handleSearchUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := userSvc.Search(r.Context(), r.URL.Query().Get("query"))
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]service.UserView, 0, len(users))
		for _, u := range users {
			out = append(out, service.ToUserView(u, false))
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": out})
	}
}
