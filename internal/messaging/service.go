package messaging

import (
	"context"
	"fmt"
	"strings"

	pkgdb "github.com/elizabethadegbaju/crystalims/pkg/db"
	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
)

// maxMessageLength caps peer message bodies.
const maxMessageLength = 4000

// UnreadCounts splits a user's unread backlog by message kind.
type UnreadCounts struct {
	Peer   int64 `json:"peer"`
	System int64 `json:"system"`
}

// Service manages peer mail between company members and system alerts
// delivered into the same inbox.
type Service interface {
	SendPeer(ctx context.Context, companyID, fromUserID, toUserID uuid.UUID, text string) (*models.Message, error)
	NotifySystem(ctx context.Context, toUserID uuid.UUID, text string) error
	Inbox(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	Sent(ctx context.Context, userID uuid.UUID) ([]models.Message, error)
	Open(ctx context.Context, userID, messageID uuid.UUID) (*models.Message, error)
	Unread(ctx context.Context, userID uuid.UUID) (UnreadCounts, error)
}

type service struct {
	repo Repository
}

// NewService wires a messaging service with its repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("message repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) SendPeer(ctx context.Context, companyID, fromUserID, toUserID uuid.UUID, text string) (*models.Message, error) {
	if companyID == uuid.Nil || fromUserID == uuid.Nil {
		return nil, fmt.Errorf("company and sender ids are required")
	}
	if toUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient is required")
	}
	if toUserID == fromUserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message text is required")
	}
	if len(text) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message text is too long")
	}

	ok, err := s.repo.MemberActive(ctx, companyID, toUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipient not found")
	}

	message := &models.Message{
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Kind:       enums.MessageKindPeer,
		Text:       text,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

// NotifySystem drops a system alert into the user's inbox. System messages
// carry the recipient as sender; the kind tag is authoritative.
func (s *service) NotifySystem(ctx context.Context, toUserID uuid.UUID, text string) error {
	if toUserID == uuid.Nil {
		return fmt.Errorf("recipient id is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("alert text is required")
	}
	return s.repo.Create(ctx, &models.Message{
		FromUserID: toUserID,
		ToUserID:   toUserID,
		Kind:       enums.MessageKindSystem,
		Text:       text,
	})
}

func (s *service) Inbox(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return s.repo.ListInbox(ctx, userID)
}

func (s *service) Sent(ctx context.Context, userID uuid.UUID) ([]models.Message, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}
	return s.repo.ListSent(ctx, userID)
}

// Open returns a message the user sent or received. Only the recipient's
// open marks it read; the sender viewing their own mail leaves the flag alone.
func (s *service) Open(ctx context.Context, userID, messageID uuid.UUID) (*models.Message, error) {
	message, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, pkgdb.AsLookupError(err, "message")
	}
	if message.ToUserID != userID && message.FromUserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
	}
	if message.ToUserID == userID && !message.Read {
		if err := s.repo.MarkRead(ctx, messageID); err != nil {
			return nil, err
		}
		message.Read = true
	}
	return message, nil
}

func (s *service) Unread(ctx context.Context, userID uuid.UUID) (UnreadCounts, error) {
	if userID == uuid.Nil {
		return UnreadCounts{}, fmt.Errorf("user id is required")
	}
	peer, err := s.repo.CountUnread(ctx, userID, enums.MessageKindPeer)
	if err != nil {
		return UnreadCounts{}, err
	}
	system, err := s.repo.CountUnread(ctx, userID, enums.MessageKindSystem)
	if err != nil {
		return UnreadCounts{}, err
	}
	return UnreadCounts{Peer: peer, System: system}, nil
}
