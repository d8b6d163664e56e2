package storage

import (
	"strings"
	"testing"

	"deskmate/model"
)

func TestSearchEmptyQuery(t *testing.T) {
	ms := newTestStorage(t)

	matches, err := ms.Search("")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("got %d matches for empty query, want 0", len(matches))
	}
}

func TestSearchFindsMatches(t *testing.T) {
	ms := newTestStorage(t)

	msgs := []model.ChatMessage{
		{Role: model.RoleUser, Content: "how do goroutines work"},
		{Role: model.RoleAssistant, Content: "a goroutine is a lightweight thread"},
		{Role: model.RoleUser, Content: "what about channel deadlocks"},
	}
	for _, m := range msgs {
		if err := ms.Append(m); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	matches, err := ms.Search("goroutine")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	for _, m := range matches {
		if !strings.Contains(m.Content, "goroutine") {
			t.Errorf("match %q does not contain query", m.Content)
		}
	}
}

func TestSearchPreviewTruncation(t *testing.T) {
	ms := newTestStorage(t)

	long := "needle " + strings.Repeat("x", 200)
	if err := ms.Append(model.ChatMessage{Role: model.RoleUser, Content: long}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	matches, err := ms.Search("needle")
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if len(matches[0].Preview) != 103 {
		t.Errorf("preview length %d, want 100 chars plus ellipsis", len(matches[0].Preview))
	}
	if !strings.HasSuffix(matches[0].Preview, "...") {
		t.Errorf("preview %q missing ellipsis", matches[0].Preview)
	}
}
