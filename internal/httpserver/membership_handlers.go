package httpserver

import (
	"net/http"

	"messenger/internal/domain"
	"messenger/internal/service"
)

type addMemberRequest struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

type roleRequest struct {
	Role domain.Role `json:"role"`
}

type subscriberRequest struct {
	Username string `json:"username"`
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// @Summary      Add group member
// @Tags         groups
// @Security     BearerAuth
// @Accept       json
// @Param        groupID path int true "Group ID"
// @Param        input body addMemberRequest true "Member"
// @Success      201  {object}  map[string]string
// @Router       /groups/{groupID}/members [post]
func handleAddGroupMember(memberSvc *service.MembershipService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, ok := pathID(w, r, "groupID")
		if !ok {
			return
		}
		var req addMemberRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if req.Role == "" {
			req.Role = domain.RoleMember
		}
		if err := memberSvc.AddGroupMember(r.Context(), groupID, CurrentUser(r).ID, req.Username, req.Role); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "member added"})
	}
}

// @Summary      Change member role
// @Tags         groups
// @Security     BearerAuth
// @Accept       json
// @Param        groupID path int true "Group ID"
// @Param        userID path int true "User ID"
// @Param        input body roleRequest true "New role"
// @Success      200  {object}  map[string]string
// @Router       /groups/{groupID}/members/{userID} [put]
func handleChangeMemberRole(memberSvc *service.MembershipService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, valid := pathID(w, r, "groupID")
		if !valid {
			return
		}
		userID, valid := pathID(w, r, "userID")
		if !valid {
			return
		}
		var req roleRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := memberSvc.ChangeGroupMemberRole(r.Context(), groupID, CurrentUser(r).ID, userID, req.Role); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, "role updated")
	}
}

// @Summary      Remove group member
// @Description  The sole admin cannot remove themself
// @Tags         groups
// @Security     BearerAuth
// @Param        groupID path int true "Group ID"
// @Param        userID path int true "User ID"
// @Success      200  {object}  map[string]string
// @Router       /groups/{groupID}/members/{userID} [delete]
func handleRemoveGroupMember(memberSvc *service.MembershipService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		groupID, valid := pathID(w, r, "groupID")
		if !valid {
			return
		}
		userID, valid := pathID(w, r, "userID")
		if !valid {
			return
		}
		if err := memberSvc.RemoveGroupMember(r.Context(), groupID, CurrentUser(r).ID, userID); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, "member removed")
	}
}

// @Summary      Add channel subscriber
// @Tags         channels
// @Security     BearerAuth
// @Accept       json
// @Param        channelID path int true "Channel ID"
// @Param        input body subscriberRequest true "Subscriber"
// @Success      201  {object}  map[string]string
// @Router       /channels/{channelID}/subscribers [post]
func handleAddSubscriber(memberSvc *service.MembershipService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID, valid := pathID(w, r, "channelID")
		if !valid {
			return
		}
		var req subscriberRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := memberSvc.AddSubscriber(r.Context(), channelID, CurrentUser(r).ID, req.Username); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "subscriber added"})
	}
}

// @Summary      Subscribe to channel
// @Tags         channels
// @Security     BearerAuth
// @Param        channelID path int true "Channel ID"
// @Success      200  {object}  map[string]string
// @Router       /channels/{channelID}/subscribe [post]
func handleSubscribe(memberSvc *service.MembershipService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID, valid := pathID(w, r, "channelID")
		if !valid {
			return
		}
		if err := memberSvc.Subscribe(r.Context(), channelID, CurrentUser(r).ID); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, "subscribed")
	}
}

// @Summary      Unsubscribe from channel
// @Tags         channels
// @Security     BearerAuth
// @Param        channelID path int true "Channel ID"
// @Success      200  {object}  map[string]string
// @Router       /channels/{channelID}/unsubscribe [delete]
func handleUnsubscribe(memberSvc *service.MembershipService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		channelID, valid := pathID(w, r, "channelID")
		if !valid {
			return
		}
		if err := memberSvc.Unsubscribe(r.Context(), channelID, CurrentUser(r).ID); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, "unsubscribed")
	}
}
