package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"unicode/utf8"

	"messenger/internal/access"
	"messenger/internal/blob"
	"messenger/internal/domain"
	"messenger/internal/security"
)

// MaxMessageLength caps text message content, in characters.
const MaxMessageLength = 5000

// BlobStore keeps uploaded file bytes.
type BlobStore interface {
	Save(ctx context.Context, r io.Reader, originalName string) (*blob.Object, error)
	Delete(name string) error
}

// MessageService appends, lists and soft-deletes chat messages. Text
// content is encrypted at rest.
type MessageService struct {
	store domain.Store
	enc   *security.Encryptor
	blobs BlobStore
}

func NewMessageService(store domain.Store, enc *security.Encryptor, blobs BlobStore) *MessageService {
	return &MessageService{store: store, enc: enc, blobs: blobs}
}

func authorizeSend(ctx context.Context, tx domain.Store, chatID, actorID int64) error {
	chat, err := loadChat(ctx, tx, chatID)
	if err != nil {
		return err
	}
	_, err = authorize(ctx, tx, chat, actorID, access.Send, "you are not allowed to send messages to this chat")
	return err
}

// Send posts a text message and returns it with the plaintext content.
func (s *MessageService) Send(ctx context.Context, chatID, actorID int64, content string) (*domain.Message, error) {
	var msg *domain.Message
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		if err := authorizeSend(ctx, tx, chatID, actorID); err != nil {
			return err
		}
		text := strings.TrimSpace(content)
		if text == "" {
			return domain.Errorf(domain.ErrInvalidInput, "text message must not be empty")
		}
		if utf8.RuneCountInString(text) > MaxMessageLength {
			return domain.Errorf(domain.ErrInvalidInput, "text message must be at most %d characters", MaxMessageLength)
		}
		sealed, err := s.enc.Encrypt(text)
		if err != nil {
			return fmt.Errorf("encrypt message: %w", err)
		}
		msg = &domain.Message{ChatID: chatID, SenderID: actorID, Type: domain.MessageText, Content: &sealed}
		if err := tx.Messages().Create(ctx, msg); err != nil {
			return err
		}
		msg.Content = &text
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// SendFile stores the upload and posts a file message referencing it. The
// sender is authorized before any bytes are stored; the blob is removed
// again when the message cannot be recorded.
func (s *MessageService) SendFile(ctx context.Context, chatID, actorID int64, r io.Reader, fileName string) (*domain.Message, error) {
	if err := authorizeSend(ctx, s.store, chatID, actorID); err != nil {
		return nil, err
	}
	fileName = path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), `\`, "/"))
	if fileName == "" || fileName == "." || fileName == "/" {
		return nil, domain.Errorf(domain.ErrInvalidInput, "no file selected")
	}

	obj, err := s.blobs.Save(ctx, r, fileName)
	switch {
	case errors.Is(err, blob.ErrBadExtension):
		return nil, domain.Errorf(domain.ErrInvalidInput, "file type not allowed")
	case errors.Is(err, blob.ErrTooLarge):
		return nil, domain.Errorf(domain.ErrInvalidInput, "file is too large")
	case err != nil:
		return nil, fmt.Errorf("store file: %w", err)
	}

	msg := &domain.Message{
		ChatID:   chatID,
		SenderID: actorID,
		Type:     domain.MessageFile,
		FileURL:  &obj.URL,
		FileName: &fileName,
		FileSize: &obj.Size,
	}
	err = s.store.WithinTx(ctx, func(tx domain.Store) error {
		if err := authorizeSend(ctx, tx, chatID, actorID); err != nil {
			return err
		}
		return tx.Messages().Create(ctx, msg)
	})
	if err != nil {
		if derr := s.blobs.Delete(obj.Name); derr != nil {
			log.Printf("failed to remove orphaned upload %s: %v", obj.Name, derr)
		}
		return nil, err
	}
	return msg, nil
}

// List returns the chat's messages oldest first, redacted for display.
func (s *MessageService) List(ctx context.Context, chatID, actorID int64) ([]MessageView, error) {
	chat, err := loadChat(ctx, s.store, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := authorize(ctx, s.store, chat, actorID, access.Read, "you do not have access to this chat"); err != nil {
		return nil, err
	}

	rows, err := s.store.Messages().ListForChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	out := make([]MessageView, 0, len(rows))
	for _, m := range rows {
		out = append(out, toMessageView(m, s.plaintext(&m.Message)))
	}
	return out, nil
}

func (s *MessageService) plaintext(m *domain.Message) *string {
	if m.IsDeleted || m.Type != domain.MessageText || m.Content == nil {
		return nil
	}
	text, err := s.enc.Decrypt(*m.Content)
	if err != nil {
		log.Printf("message %d: %v", m.ID, err)
		return nil
	}
	return &text
}

// Delete soft-deletes a message. Deleting an already deleted message is a
// successful no-op.
func (s *MessageService) Delete(ctx context.Context, messageID, actorID int64) error {
	var fileURL *string
	err := s.store.WithinTx(ctx, func(tx domain.Store) error {
		msg, err := tx.Messages().GetByID(ctx, messageID)
		if err != nil {
			return fmt.Errorf("get message: %w", err)
		}
		if msg == nil {
			return domain.Errorf(domain.ErrNotFound, "message not found")
		}
		if msg.IsDeleted {
			return nil
		}
		chat, err := loadChat(ctx, tx, msg.ChatID)
		if err != nil {
			return err
		}
		rel, err := resolveRelation(ctx, tx, chat, actorID)
		if err != nil {
			return err
		}
		if !access.CanDeleteMessage(rel, actorID, msg.SenderID) {
			return domain.Errorf(domain.ErrForbidden, "you are not allowed to delete this message")
		}
		fileURL = msg.FileURL
		return tx.Messages().SoftDelete(ctx, messageID, actorID)
	})
	if err != nil {
		return err
	}
	if fileURL != nil {
		if derr := s.blobs.Delete(path.Base(*fileURL)); derr != nil {
			log.Printf("failed to remove upload of deleted message %d: %v", messageID, derr)
		}
	}
	return nil
}
