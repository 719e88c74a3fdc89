package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateAssistant(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	a, err := m.CreateAssistant(ctx, "Bot", "Be helpful.", "gpt-4")
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" {
		t.Error("expected generated id")
	}
	if a.CreatedAt.IsZero() || a.UpdatedAt.IsZero() {
		t.Error("expected server-assigned timestamps")
	}
}

func TestCreateAssistantDefaultModel(t *testing.T) {
	m := testManager(t)

	a, err := m.CreateAssistant(context.Background(), "Bot", "Be helpful.", "")
	if err != nil {
		t.Fatal(err)
	}
	if a.Model != defaultModel {
		t.Errorf("expected model %q, got %q", defaultModel, a.Model)
	}
}

func TestCreateAssistantValidation(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	cases := []struct {
		name         string
		instructions string
	}{
		{"", "x"},
		{"   ", "x"},
		{"x", ""},
		{"x", "  \t "},
	}
	for _, tc := range cases {
		_, err := m.CreateAssistant(ctx, tc.name, tc.instructions, "m")
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Errorf("CreateAssistant(%q, %q): expected ValidationError, got %v", tc.name, tc.instructions, err)
		}
	}

	// Nothing may have been persisted by the rejected creates.
	assistants, err := m.ListAssistants(ctx, 0, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(assistants) != 0 {
		t.Errorf("expected empty store after failed creates, got %d rows", len(assistants))
	}
}

func TestGetAssistantRoundTrip(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	created, err := m.CreateAssistant(ctx, "Bot", "Be helpful.", "gpt-4")
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.GetAssistant(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Instructions != "Be helpful." {
		t.Errorf("instructions mutated in storage: %q", got.Instructions)
	}
	if got.Name != "Bot" || got.Model != "gpt-4" {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestGetAssistantNotFound(t *testing.T) {
	m := testManager(t)

	_, err := m.GetAssistant(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAssistantPartial(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)

	name := "Renamed"
	updated, err := m.UpdateAssistant(ctx, a.ID, UpdateAssistantParams{Name: &name})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Name != "Renamed" {
		t.Errorf("name not updated: %q", updated.Name)
	}
	if updated.Instructions != a.Instructions {
		t.Errorf("instructions changed on a name-only update: %q", updated.Instructions)
	}
	if updated.Model != a.Model {
		t.Errorf("model changed on a name-only update: %q", updated.Model)
	}
	if !updated.UpdatedAt.After(a.UpdatedAt) && !updated.UpdatedAt.Equal(a.UpdatedAt) {
		t.Errorf("updated_at went backwards: %v -> %v", a.UpdatedAt, updated.UpdatedAt)
	}

	got, err := m.GetAssistant(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Renamed" {
		t.Errorf("update not persisted: %q", got.Name)
	}
}

func TestUpdateAssistantRevalidates(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)

	empty := "   "
	_, err := m.UpdateAssistant(ctx, a.ID, UpdateAssistantParams{Instructions: &empty})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, err := m.GetAssistant(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Instructions != a.Instructions {
		t.Errorf("rejected update still changed instructions: %q", got.Instructions)
	}
}

func TestUpdateAssistantNotFound(t *testing.T) {
	m := testManager(t)

	name := "x"
	_, err := m.UpdateAssistant(context.Background(), "nonexistent", UpdateAssistantParams{Name: &name})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAssistant(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)

	if err := m.DeleteAssistant(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := m.GetAssistant(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteAssistantTwiceFails(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)

	if err := m.DeleteAssistant(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteAssistant(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete must fail with ErrNotFound, got %v", err)
	}
}

func TestDeleteAssistantCascades(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()
	a := testAssistant(t, m)

	var threadIDs []string
	for i := 0; i < 2; i++ {
		th := testThread(t, m, a.ID)
		threadIDs = append(threadIDs, th.ID)
		for j := 0; j < 3; j++ {
			if _, err := m.AddMessage(ctx, th.ID, "user", "hello"); err != nil {
				t.Fatal(err)
			}
		}
	}

	if err := m.DeleteAssistant(ctx, a.ID); err != nil {
		t.Fatal(err)
	}

	for _, id := range threadIDs {
		if _, err := m.GetThread(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("thread %s should be gone, got %v", id, err)
		}
		if _, err := m.ListMessages(ctx, id, 0, 10); !errors.Is(err, ErrNotFound) {
			t.Errorf("messages of thread %s should be unreachable, got %v", id, err)
		}
	}

	// No orphaned rows may persist after the cascade.
	var orphans int
	if err := m.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("expected 0 message rows after cascade, got %d", orphans)
	}
	if err := m.db.QueryRow(`SELECT COUNT(*) FROM threads`).Scan(&orphans); err != nil {
		t.Fatal(err)
	}
	if orphans != 0 {
		t.Errorf("expected 0 thread rows after cascade, got %d", orphans)
	}
}

func TestListAssistantsPagination(t *testing.T) {
	m := testManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := m.CreateAssistant(ctx, "Bot", "Be helpful.", "m"); err != nil {
			t.Fatal(err)
		}
		// created_at has sub-second resolution; a tiny gap keeps creation
		// order unambiguous for the ordering assertion below.
		time.Sleep(2 * time.Millisecond)
	}

	page1, err := m.ListAssistants(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	page2, err := m.ListAssistants(ctx, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("expected 2+2 results, got %d+%d", len(page1), len(page2))
	}
	if page1[0].ID == page2[0].ID {
		t.Error("pages overlap")
	}

	// Deterministic pagination: the same offset/limit returns the same slice.
	again, err := m.ListAssistants(ctx, 0, 2)
	if err != nil {
		t.Fatal(err)
	}
	if again[0].ID != page1[0].ID || again[1].ID != page1[1].ID {
		t.Error("repeated list with same args returned a different slice")
	}

	// Newest first.
	all, err := m.ListAssistants(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Errorf("list not ordered newest first at index %d", i)
		}
	}
}
