package state

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sovereignhq/assistant/internal/models"
)

func TestAddMessage(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	msg, err := m.AddMessage(ctx, th.ID, models.RoleUser, "What is the capital of France?")
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID == "" {
		t.Error("expected generated id")
	}
	if msg.TokenCount < 1 {
		t.Errorf("token count must be at least 1, got %d", msg.TokenCount)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected server-assigned timestamp")
	}
}

func TestAddMessageTouchesThread(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	time.Sleep(2 * time.Millisecond)
	if _, err := m.AddMessage(ctx, th.ID, models.RoleUser, "hi"); err != nil {
		t.Fatal(err)
	}

	got, err := m.GetThread(ctx, th.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.UpdatedAt.After(th.UpdatedAt) {
		t.Errorf("thread updated_at not touched: %v -> %v", th.UpdatedAt, got.UpdatedAt)
	}
}

func TestAddMessageValidation(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	var ve *ValidationError
	if _, err := m.AddMessage(ctx, th.ID, "operator", "hi"); !errors.As(err, &ve) {
		t.Errorf("unknown role: expected ValidationError, got %v", err)
	}
	if _, err := m.AddMessage(ctx, th.ID, models.RoleUser, "   "); !errors.As(err, &ve) {
		t.Errorf("blank content: expected ValidationError, got %v", err)
	}

	msgs, err := m.ListMessages(ctx, th.ID, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 0 {
		t.Errorf("rejected adds persisted %d messages", len(msgs))
	}
}

func TestAddMessageAllRoles(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	for _, role := range []models.Role{models.RoleSystem, models.RoleUser, models.RoleAssistant} {
		if _, err := m.AddMessage(ctx, th.ID, role, "content for "+string(role)); err != nil {
			t.Errorf("role %q rejected: %v", role, err)
		}
	}
}

func TestAddMessageUnknownThread(t *testing.T) {
	m := testManager(t)

	_, err := m.AddMessage(context.Background(), "nonexistent", models.RoleUser, "hi")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListMessagesOrderAndIdempotence(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	const n = 8
	for i := 0; i < n; i++ {
		if _, err := m.AddMessage(ctx, th.ID, models.RoleUser, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	msgs, err := m.ListMessages(ctx, th.ID, 0, n)
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != n {
		t.Fatalf("expected %d messages, got %d", n, len(msgs))
	}
	for i, msg := range msgs {
		if want := fmt.Sprintf("message %d", i); msg.Content != want {
			t.Errorf("position %d holds %q, want %q", i, msg.Content, want)
		}
	}

	// Idempotent absent further writes.
	again, err := m.ListMessages(ctx, th.ID, 0, n)
	if err != nil {
		t.Fatal(err)
	}
	for i := range again {
		if again[i].ID != msgs[i].ID {
			t.Fatalf("repeated list diverged at index %d", i)
		}
	}
}

func TestListMessagesPagination(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	for i := 0; i < 5; i++ {
		if _, err := m.AddMessage(ctx, th.ID, models.RoleUser, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	page, err := m.ListMessages(ctx, th.ID, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(page))
	}
	if page[0].Content != "message 2" || page[1].Content != "message 3" {
		t.Errorf("wrong slice: %q, %q", page[0].Content, page[1].Content)
	}
}

func TestPruneMessages(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	const total, keep = 7, 3
	for i := 0; i < total; i++ {
		if _, err := m.AddMessage(ctx, th.ID, models.RoleUser, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := m.PruneMessages(ctx, th.ID, keep)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != total-keep {
		t.Errorf("deleted %d, want %d", deleted, total-keep)
	}

	remaining, err := m.ListMessages(ctx, th.ID, 0, total)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != keep {
		t.Fatalf("kept %d messages, want %d", len(remaining), keep)
	}
	// The newest survive, in their original relative order.
	for i, msg := range remaining {
		if want := fmt.Sprintf("message %d", total-keep+i); msg.Content != want {
			t.Errorf("position %d holds %q, want %q", i, msg.Content, want)
		}
	}

	// Idempotent: an immediate second prune deletes nothing.
	deleted, err = m.PruneMessages(ctx, th.ID, keep)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Errorf("second prune deleted %d, want 0", deleted)
	}
}

func TestPruneShortThreadIsNoop(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	for i := 0; i < 2; i++ {
		if _, err := m.AddMessage(ctx, th.ID, models.RoleUser, "hi"); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := m.PruneMessages(ctx, th.ID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 0 {
		t.Errorf("pruning a short thread deleted %d messages", deleted)
	}
}

func TestPruneUnknownThread(t *testing.T) {
	m := testManager(t)

	_, err := m.PruneMessages(context.Background(), "nonexistent", 5)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPruneNegativeKeepCount(t *testing.T) {
	m := testManager(t)
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	_, err := m.PruneMessages(context.Background(), th.ID, -1)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestPruneZeroKeepsNothing(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)
	th := testThread(t, m, a.ID)

	for i := 0; i < 3; i++ {
		if _, err := m.AddMessage(ctx, th.ID, models.RoleUser, "hi"); err != nil {
			t.Fatal(err)
		}
	}

	deleted, err := m.PruneMessages(ctx, th.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 3 {
		t.Errorf("deleted %d, want 3", deleted)
	}
}
