package share

import (
	"strings"
	"testing"

	"github.com/winsznx/celo-guestbook/internal/contract"
)

func TestWarpcastURLEscapesText(t *testing.T) {
	u := WarpcastURL(`hello "world" & more`)
	if !strings.HasPrefix(u, "https://warpcast.com/~/compose?text=") {
		t.Fatalf("unexpected prefix: %s", u)
	}
	if strings.ContainsAny(u[len("https://warpcast.com/~/compose?text="):], `" &`) {
		t.Fatalf("text not escaped: %s", u)
	}
}

func TestMessageTextTruncatesLongBodies(t *testing.T) {
	m := contract.Message{Name: "ada", Message: strings.Repeat("a", 200)}
	text := MessageText(m, "https://guestbook.app")
	if !strings.Contains(text, "...") {
		t.Fatalf("expected truncation marker in %q", text)
	}
	if !strings.Contains(text, "ada") || !strings.Contains(text, "https://guestbook.app") {
		t.Fatalf("expected author and app url in %q", text)
	}
}

func TestTodoTextReflectsState(t *testing.T) {
	open := TodoText(contract.Todo{Title: "ship it", Likes: 2}, "https://guestbook.app")
	if !strings.Contains(open, "open") || !strings.Contains(open, "2 likes") {
		t.Fatalf("unexpected open todo text: %q", open)
	}
	done := TodoText(contract.Todo{Title: "ship it", Completed: true}, "https://guestbook.app")
	if !strings.Contains(done, "done") {
		t.Fatalf("unexpected done todo text: %q", done)
	}
}
