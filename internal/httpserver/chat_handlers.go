package httpserver

import (
	"net/http"
	"strings"

	"messenger/internal/domain"
	"messenger/internal/service"
)

type privateChatRequest struct {
	UserID         *int64 `json:"user_id"`
	TargetUsername string `json:"target_username"`
}

type chatCreateRequest struct {
	Name            string   `json:"name"`
	AvatarURL       *string  `json:"avatar_url"`
	MemberIDs       []int64  `json:"member_ids"`
	MemberUsernames []string `json:"member_usernames"`
}

type chatUpdateRequest struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
}

func (r chatCreateRequest) input() service.ChatCreateInput {
	return service.ChatCreateInput{
		Name:            r.Name,
		AvatarURL:       r.AvatarURL,
		MemberIDs:       r.MemberIDs,
		MemberUsernames: r.MemberUsernames,
	}
}

func chatCreated(w http.ResponseWriter, kind string, chat *domain.Chat) {
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": kind + " chat created",
		"chat_id": chat.ID,
	})
}

// @Summary      Create a private chat
// @Description  Opens a one-to-one chat by user id or username
// @Tags         chats
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body privateChatRequest true "Counterpart"
// @Success      201  {object}  map[string]any
// @Failure      409  {object}  map[string]any
// @Router       /chats/private [post]
func handleCreatePrivateChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req privateChatRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		actor := CurrentUser(r)
		var (
			chat *domain.Chat
			err  error
		)
		switch {
		case req.UserID != nil:
			chat, err = chatSvc.CreatePrivate(r.Context(), actor.ID, *req.UserID)
		case strings.TrimSpace(req.TargetUsername) != "":
			chat, err = chatSvc.CreatePrivateWithUsername(r.Context(), actor.ID, req.TargetUsername)
		default:
			badRequest(w, "user_id or target_username is required")
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		chatCreated(w, "private", chat)
	}
}

// @Summary      Create a group chat
// @Tags         chats
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body chatCreateRequest true "Group"
// @Success      201  {object}  map[string]any
// @Router       /chats/group [post]
func handleCreateGroup(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatCreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		chat, err := chatSvc.CreateGroup(r.Context(), CurrentUser(r).ID, req.input())
		if err != nil {
			writeError(w, err)
			return
		}
		chatCreated(w, "group", chat)
	}
}

// @Summary      Create a channel
// @Tags         chats
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body chatCreateRequest true "Channel"
// @Success      201  {object}  map[string]any
// @Router       /chats/channel [post]
func handleCreateChannel(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatCreateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		chat, err := chatSvc.CreateChannel(r.Context(), CurrentUser(r).ID, req.input())
		if err != nil {
			writeError(w, err)
			return
		}
		chatCreated(w, "channel", chat)
	}
}

// @Summary      List chats
// @Description  Private chats, then groups, then channels the user belongs to
// @Tags         chats
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  service.ChatSummary
// @Router       /chats [get]
func handleListChats(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chats, err := chatSvc.ListForUser(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chats)
	}
}

// @Summary      Get chat
// @Tags         chats
// @Security     BearerAuth
// @Produce      json
// @Param        chatID path int true "Chat ID"
// @Success      200  {object}  service.ChatDetail
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /chats/{chatID} [get]
func handleGetChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, valid := pathID(w, r, "chatID")
		if !valid {
			return
		}
		detail, err := chatSvc.Get(r.Context(), chatID, CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// @Summary      Update group or channel
// @Tags         chats
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        chatID path int true "Chat ID"
// @Param        input body chatUpdateRequest true "Fields to change"
// @Success      200  {object}  map[string]any
// @Router       /chats/{chatID} [put]
func handleUpdateChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, valid := pathID(w, r, "chatID")
		if !valid {
			return
		}
		var req chatUpdateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		chat, err := chatSvc.Update(r.Context(), chatID, CurrentUser(r).ID, domain.ChatUpdate{
			Name:      req.Name,
			AvatarURL: req.AvatarURL,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "chat updated",
			"chat_id": chat.ID,
		})
	}
}

// @Summary      Delete chat
// @Description  Removes the chat with its members and messages
// @Tags         chats
// @Security     BearerAuth
// @Param        chatID path int true "Chat ID"
// @Success      200  {object}  map[string]string
// @Router       /chats/{chatID} [delete]
func handleDeleteChat(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, valid := pathID(w, r, "chatID")
		if !valid {
			return
		}
		if err := chatSvc.Delete(r.Context(), chatID, CurrentUser(r).ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "chat deleted"})
	}
}
