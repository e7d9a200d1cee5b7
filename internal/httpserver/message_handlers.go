package httpserver

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"messenger/internal/domain"
	"messenger/internal/service"
)

type messageCreateRequest struct {
	Content string `json:"content"`
}

// multipartOverhead is the slack allowed on top of the file limit for the
// form boundaries and headers.
const multipartOverhead = 1 << 20

func sentView(m *domain.Message, sender *domain.User) service.MessageView {
	return service.MessageView{
		ID:                m.ID,
		ChatID:            m.ChatID,
		SenderID:          m.SenderID,
		SenderDisplayName: sender.DisplayName,
		SenderAvatarURL:   sender.AvatarURL,
		MessageType:       m.Type,
		SentAt:            m.SentAt,
		Content:           m.Content,
		FileURL:           m.FileURL,
		FileName:          m.FileName,
		FileSize:          m.FileSize,
	}
}

// @Summary      Send message
// @Description  JSON body {"content": "..."} sends text; multipart form field "file" sends a file
// @Tags         messages
// @Security     BearerAuth
// @Accept       json,mpfd
// @Produce      json
// @Param        chatID path int true "Chat ID"
// @Success      201  {object}  service.MessageView
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /chats/{chatID}/messages [post]
func handleCreateMessage(msgSvc *service.MessageService, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		currentUser := CurrentUser(r)
		chatID, valid := pathID(w, r, "chatID")
		if !valid {
			return
		}

		var (
			msg *domain.Message
			err error
		)
		mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if strings.HasPrefix(mediaType, "multipart/") {
			r.Body = http.MaxBytesReader(w, r.Body, maxUpload+multipartOverhead)
			file, header, ferr := r.FormFile("file")
			if ferr != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(ferr, &tooLarge) {
					badRequest(w, "file is too large")
					return
				}
				badRequest(w, "no file selected")
				return
			}
			defer file.Close()
			msg, err = msgSvc.SendFile(r.Context(), chatID, currentUser.ID, file, header.Filename)
		} else {
			var req messageCreateRequest
			if !decodeJSON(w, r, &req) {
				return
			}
			msg, err = msgSvc.Send(r.Context(), chatID, currentUser.ID, req.Content)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sentView(msg, currentUser))
	}
}

// @Summary      List messages
// @Description  Messages oldest first; deleted ones carry a placeholder instead of content
// @Tags         messages
// @Security     BearerAuth
// @Produce      json
// @Param        chatID path int true "Chat ID"
// @Success      200  {array}  service.MessageView
// @Failure      403  {object}  map[string]string
// @Router       /chats/{chatID}/messages [get]
func handleListMessages(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, valid := pathID(w, r, "chatID")
		if !valid {
			return
		}
		msgs, err := msgSvc.List(r.Context(), chatID, CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

// @Summary      Delete message
// @Tags         messages
// @Security     BearerAuth
// @Param        messageID path int true "Message ID"
// @Success      200  {object}  map[string]string
// @Router       /messages/{messageID} [delete]
func handleDeleteMessage(msgSvc *service.MessageService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messageID, valid := pathID(w, r, "messageID")
		if !valid {
			return
		}
		if err := msgSvc.Delete(r.Context(), messageID, CurrentUser(r).ID); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, "message deleted")
	}
}
