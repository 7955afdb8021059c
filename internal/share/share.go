// Package share composes Warpcast share links for messages and todos.
package share

import (
	"fmt"
	"net/url"

	"github.com/winsznx/celo-guestbook/internal/contract"
	"github.com/winsznx/celo-guestbook/pkg/recency"
)

const composeURL = "https://warpcast.com/~/compose"

const shareSnippetChars = 140

// WarpcastURL wraps text into a Warpcast compose link.
func WarpcastURL(text string) string {
	return composeURL + "?text=" + url.QueryEscape(text)
}

// MessageText is the cast body for sharing a guestbook message.
func MessageText(m contract.Message, appURL string) string {
	body := recency.Truncate(m.Message, shareSnippetChars)
	return fmt.Sprintf("%q by %s in the on-chain Guest Book %s", body, m.Name, appURL)
}

// TodoText is the cast body for sharing a community todo.
func TodoText(t contract.Todo, appURL string) string {
	state := "open"
	if t.Completed {
		state = "done"
	}
	return fmt.Sprintf("Todo %q (%s, %d likes) on the community list %s", t.Title, state, t.Likes, appURL)
}
