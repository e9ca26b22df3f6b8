package history_test

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/promptly-app/promptly/backend/internal/model/chat"
	"github.com/promptly-app/promptly/backend/internal/service/history"
	"github.com/promptly-app/promptly/backend/internal/store"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open err: %v", err)
	}
	t.Cleanup(func() { _ = store.Close(db) })
	return db
}

func seed(t *testing.T, db *gorm.DB, msg chat.Message) {
	t.Helper()
	if err := db.Create(&msg).Error; err != nil {
		t.Fatalf("seed message err: %v", err)
	}
}

func TestRecordAssignsIDAndTimestamp(t *testing.T) {
	svc := history.NewService(openTestDB(t))
	ctx := context.Background()

	before := time.Now().UTC()
	msg, err := svc.Record(ctx, "user_1", chat.RoleUser, "hello", "conv-a")
	if err != nil {
		t.Fatalf("Record err: %v", err)
	}

	if msg.ID == "" {
		t.Fatal("expected generated message id")
	}
	if msg.CreatedAt.Before(before) {
		t.Fatalf("timestamp not assigned at write time: %v", msg.CreatedAt)
	}
}

func TestRecordRequiresOwner(t *testing.T) {
	svc := history.NewService(openTestDB(t))

	if _, err := svc.Record(context.Background(), "", chat.RoleUser, "hello", "conv-a"); err != history.ErrOwnerRequired {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
}

func TestAssembleGroupsByChatID(t *testing.T) {
	db := openTestDB(t)
	svc := history.NewService(db)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed(t, db, chat.Message{ID: "m1", OwnerID: "user_1", ChatID: "A", Role: chat.RoleBot, Content: "hi", CreatedAt: base.Add(1 * time.Second)})
	seed(t, db, chat.Message{ID: "m2", OwnerID: "user_1", ChatID: "A", Role: chat.RoleUser, Content: "hello", CreatedAt: base.Add(2 * time.Second)})
	seed(t, db, chat.Message{ID: "m3", OwnerID: "user_1", ChatID: "B", Role: chat.RoleUser, Content: "x", CreatedAt: base.Add(3 * time.Second)})

	conversations, err := svc.Assemble(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Assemble err: %v", err)
	}

	if len(conversations) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(conversations))
	}
	if conversations[0].ChatID != "A" || conversations[1].ChatID != "B" {
		t.Fatalf("unexpected group order: %s, %s", conversations[0].ChatID, conversations[1].ChatID)
	}
	if len(conversations[0].Messages) != 2 {
		t.Fatalf("expected 2 messages in A, got %d", len(conversations[0].Messages))
	}
	if conversations[0].LastMessage.Content != "hello" {
		t.Fatalf("unexpected last message for A: %q", conversations[0].LastMessage.Content)
	}
	if conversations[1].LastMessage.Content != "x" {
		t.Fatalf("unexpected last message for B: %q", conversations[1].LastMessage.Content)
	}
}

func TestAssembleOrdersAscendingByTimestamp(t *testing.T) {
	db := openTestDB(t)
	svc := history.NewService(db)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose.
	seed(t, db, chat.Message{ID: "m2", OwnerID: "user_1", ChatID: "A", Role: chat.RoleBot, Content: "second", CreatedAt: base.Add(2 * time.Second)})
	seed(t, db, chat.Message{ID: "m1", OwnerID: "user_1", ChatID: "A", Role: chat.RoleUser, Content: "first", CreatedAt: base.Add(1 * time.Second)})

	conversations, err := svc.Assemble(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Assemble err: %v", err)
	}

	got := conversations[0].Messages
	if got[0].Content != "first" || got[1].Content != "second" {
		t.Fatalf("messages not sorted ascending: %q, %q", got[0].Content, got[1].Content)
	}
}

func TestAssembleBreaksTimestampTiesByInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	svc := history.NewService(db)
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed(t, db, chat.Message{ID: "m1", OwnerID: "user_1", ChatID: "A", Role: chat.RoleUser, Content: "earlier insert", CreatedAt: at})
	seed(t, db, chat.Message{ID: "m2", OwnerID: "user_1", ChatID: "A", Role: chat.RoleBot, Content: "later insert", CreatedAt: at})

	conversations, err := svc.Assemble(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Assemble err: %v", err)
	}

	got := conversations[0].Messages
	if got[0].Content != "earlier insert" || got[1].Content != "later insert" {
		t.Fatalf("tie not broken by insertion order: %q, %q", got[0].Content, got[1].Content)
	}
}

func TestAssembleDropsRecordsWithoutChatID(t *testing.T) {
	db := openTestDB(t)
	svc := history.NewService(db)

	seed(t, db, chat.Message{ID: "m1", OwnerID: "user_1", ChatID: "", Role: chat.RoleUser, Content: "orphan", CreatedAt: time.Now().UTC()})
	seed(t, db, chat.Message{ID: "m2", OwnerID: "user_1", ChatID: "A", Role: chat.RoleUser, Content: "kept", CreatedAt: time.Now().UTC()})

	conversations, err := svc.Assemble(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Assemble err: %v", err)
	}

	if len(conversations) != 1 {
		t.Fatalf("expected 1 conversation, got %d", len(conversations))
	}
	for _, msg := range conversations[0].Messages {
		if msg.Content == "orphan" {
			t.Fatal("record without chat id leaked into a group")
		}
	}
}

func TestAssembleExcludesOtherOwners(t *testing.T) {
	db := openTestDB(t)
	svc := history.NewService(db)

	seed(t, db, chat.Message{ID: "m1", OwnerID: "user_1", ChatID: "A", Role: chat.RoleUser, Content: "mine", CreatedAt: time.Now().UTC()})
	seed(t, db, chat.Message{ID: "m2", OwnerID: "user_2", ChatID: "A", Role: chat.RoleUser, Content: "theirs", CreatedAt: time.Now().UTC()})

	conversations, err := svc.Assemble(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Assemble err: %v", err)
	}

	if len(conversations) != 1 || len(conversations[0].Messages) != 1 {
		t.Fatalf("unexpected result: %+v", conversations)
	}
	if conversations[0].Messages[0].Content != "mine" {
		t.Fatalf("leaked another owner's record: %q", conversations[0].Messages[0].Content)
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	svc := history.NewService(db)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	seed(t, db, chat.Message{ID: "m1", OwnerID: "user_1", ChatID: "A", Role: chat.RoleUser, Content: "hello", CreatedAt: base})
	seed(t, db, chat.Message{ID: "m2", OwnerID: "user_1", ChatID: "B", Role: chat.RoleBot, Content: "hi", CreatedAt: base.Add(time.Second)})

	first, err := svc.Assemble(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("first Assemble err: %v", err)
	}
	second, err := svc.Assemble(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("second Assemble err: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("group count changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ChatID != second[i].ChatID {
			t.Fatalf("group order changed at %d: %s vs %s", i, first[i].ChatID, second[i].ChatID)
		}
		if len(first[i].Messages) != len(second[i].Messages) {
			t.Fatalf("message count changed for %s", first[i].ChatID)
		}
		if first[i].LastMessage.ID != second[i].LastMessage.ID {
			t.Fatalf("last message changed for %s", first[i].ChatID)
		}
	}
}

func TestAssembleEmptyOwner(t *testing.T) {
	svc := history.NewService(openTestDB(t))

	conversations, err := svc.Assemble(context.Background(), "user_1")
	if err != nil {
		t.Fatalf("Assemble err: %v", err)
	}
	if len(conversations) != 0 {
		t.Fatalf("expected no conversations, got %d", len(conversations))
	}
}
