package messaging

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/elizabethadegbaju/crystalims/pkg/db/models"
	"github.com/elizabethadegbaju/crystalims/pkg/enums"
	pkgerrors "github.com/elizabethadegbaju/crystalims/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepository struct {
	messages map[uuid.UUID]*models.Message
	members  map[uuid.UUID]bool
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		messages: map[uuid.UUID]*models.Message{},
		members:  map[uuid.UUID]bool{},
	}
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(_ context.Context, message *models.Message) error {
	message.ID = uuid.New()
	message.SentAt = time.Now()
	f.messages[message.ID] = message
	return nil
}

func (f *fakeRepository) GetByID(_ context.Context, messageID uuid.UUID) (*models.Message, error) {
	message, ok := f.messages[messageID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *message
	return &copied, nil
}

func (f *fakeRepository) ListInbox(_ context.Context, toUserID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, message := range f.messages {
		if message.ToUserID == toUserID {
			out = append(out, *message)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListSent(_ context.Context, fromUserID uuid.UUID) ([]models.Message, error) {
	var out []models.Message
	for _, message := range f.messages {
		if message.FromUserID == fromUserID && message.Kind == enums.MessageKindPeer {
			out = append(out, *message)
		}
	}
	return out, nil
}

func (f *fakeRepository) MarkRead(_ context.Context, messageID uuid.UUID) error {
	f.messages[messageID].Read = true
	return nil
}

func (f *fakeRepository) CountUnread(_ context.Context, toUserID uuid.UUID, kind enums.MessageKind) (int64, error) {
	var count int64
	for _, message := range f.messages {
		if message.ToUserID == toUserID && message.Kind == kind && !message.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepository) MemberActive(_ context.Context, _, userID uuid.UUID) (bool, error) {
	return f.members[userID], nil
}

func newTestService(t *testing.T) (Service, *fakeRepository) {
	t.Helper()
	repo := newFakeRepository()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return svc, repo
}

func TestSendPeerRequiresActiveRecipient(t *testing.T) {
	svc, repo := newTestService(t)
	companyID := uuid.New()
	sender := uuid.New()
	recipient := uuid.New()

	_, err := svc.SendPeer(context.Background(), companyID, sender, recipient, "hello")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unknown recipient must be not found, got %v", err)
	}

	repo.members[recipient] = true
	message, err := svc.SendPeer(context.Background(), companyID, sender, recipient, "  hello  ")
	if err != nil {
		t.Fatalf("SendPeer error: %v", err)
	}
	if message.Kind != enums.MessageKindPeer {
		t.Fatalf("expected peer kind, got %s", message.Kind)
	}
	if message.Text != "hello" {
		t.Fatalf("text should be trimmed, got %q", message.Text)
	}
}

func TestSendPeerRejectsSelfAndOversizedText(t *testing.T) {
	svc, repo := newTestService(t)
	companyID := uuid.New()
	sender := uuid.New()
	repo.members[sender] = true

	_, err := svc.SendPeer(context.Background(), companyID, sender, sender, "note to self")
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("self message must fail validation, got %v", err)
	}

	recipient := uuid.New()
	repo.members[recipient] = true
	_, err = svc.SendPeer(context.Background(), companyID, sender, recipient, strings.Repeat("x", maxMessageLength+1))
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeValidation {
		t.Fatalf("oversized message must fail validation, got %v", err)
	}
}

func TestOpenMarksReadAndHidesForeignMail(t *testing.T) {
	svc, repo := newTestService(t)
	recipient := uuid.New()
	repo.members[recipient] = true

	message, err := svc.SendPeer(context.Background(), uuid.New(), uuid.New(), recipient, "ping")
	if err != nil {
		t.Fatalf("SendPeer error: %v", err)
	}

	_, err = svc.Open(context.Background(), uuid.New(), message.ID)
	if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign reader must get not found, got %v", err)
	}

	opened, err := svc.Open(context.Background(), recipient, message.ID)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if !opened.Read {
		t.Fatal("opening must mark the message read")
	}
	if !repo.messages[message.ID].Read {
		t.Fatal("read flag must be persisted")
	}
}

func TestOpenBySenderLeavesReadFlagAlone(t *testing.T) {
	svc, repo := newTestService(t)
	sender := uuid.New()
	recipient := uuid.New()
	repo.members[recipient] = true

	message, err := svc.SendPeer(context.Background(), uuid.New(), sender, recipient, "ping")
	if err != nil {
		t.Fatalf("SendPeer error: %v", err)
	}

	opened, err := svc.Open(context.Background(), sender, message.ID)
	if err != nil {
		t.Fatalf("sender must be able to view their own mail: %v", err)
	}
	if opened.Read || repo.messages[message.ID].Read {
		t.Fatal("a sender's view must not mark the message read")
	}

	if _, err := svc.Open(context.Background(), recipient, message.ID); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if !repo.messages[message.ID].Read {
		t.Fatal("recipient open must mark the message read")
	}
}

func TestUnreadSplitsByKind(t *testing.T) {
	svc, repo := newTestService(t)
	recipient := uuid.New()
	repo.members[recipient] = true

	if _, err := svc.SendPeer(context.Background(), uuid.New(), uuid.New(), recipient, "one"); err != nil {
		t.Fatalf("SendPeer error: %v", err)
	}
	peerTwo, err := svc.SendPeer(context.Background(), uuid.New(), uuid.New(), recipient, "two")
	if err != nil {
		t.Fatalf("SendPeer error: %v", err)
	}
	if err := svc.NotifySystem(context.Background(), recipient, "request fulfilled"); err != nil {
		t.Fatalf("NotifySystem error: %v", err)
	}

	counts, err := svc.Unread(context.Background(), recipient)
	if err != nil {
		t.Fatalf("Unread error: %v", err)
	}
	if counts.Peer != 2 || counts.System != 1 {
		t.Fatalf("expected 2 peer / 1 system unread, got %+v", counts)
	}

	if _, err := svc.Open(context.Background(), recipient, peerTwo.ID); err != nil {
		t.Fatalf("Open error: %v", err)
	}
	counts, err = svc.Unread(context.Background(), recipient)
	if err != nil {
		t.Fatalf("Unread error: %v", err)
	}
	if counts.Peer != 1 || counts.System != 1 {
		t.Fatalf("expected 1 peer / 1 system unread after open, got %+v", counts)
	}
}

func TestSentListsOnlyPeerMail(t *testing.T) {
	svc, repo := newTestService(t)
	sender := uuid.New()
	recipient := uuid.New()
	repo.members[recipient] = true

	if _, err := svc.SendPeer(context.Background(), uuid.New(), sender, recipient, "outbound"); err != nil {
		t.Fatalf("SendPeer error: %v", err)
	}
	if err := svc.NotifySystem(context.Background(), sender, "system note"); err != nil {
		t.Fatalf("NotifySystem error: %v", err)
	}

	sent, err := svc.Sent(context.Background(), sender)
	if err != nil {
		t.Fatalf("Sent error: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected 1 sent peer message, got %d", len(sent))
	}
	if sent[0].Kind != enums.MessageKindPeer {
		t.Fatalf("sent list must only hold peer mail, got %s", sent[0].Kind)
	}
}
