// Package frame serves the button-driven interactive card embedded in a
// social feed. Every request is computed from a freshly fetched contract
// snapshot; nothing is cached across requests.
package frame

import (
	"github.com/winsznx/celo-guestbook/internal/contract"
	"github.com/winsznx/celo-guestbook/pkg/recency"
)

// View names one of the fixed set of renderable cards.
type View string

const (
	ViewHome     View = "home"
	ViewMessages View = "messages"
	ViewTodos    View = "todos"
)

// Button tokens carried by frame actions.
const (
	ButtonViewMessages = "view_messages"
	ButtonViewTodos    = "view_todos"
	ButtonHome         = "home"
)

const (
	latestCount     = 3
	maxMessageChars = 100
)

// Action is one of the buttons or links offered beneath a view. Exactly
// one of Value (an internal button) and URL (the open-app link) is set.
type Action struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
	URL   string `json:"url,omitempty"`
}

type MessageCard struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

type TodoCard struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Likes     uint64 `json:"likes"`
}

type Counts struct {
	Messages  int `json:"messages"`
	Todos     int `json:"todos"`
	Completed int `json:"completed"`
}

// Response is the composed view payload, identical for both entry verbs.
type Response struct {
	View     View          `json:"view"`
	Theme    string        `json:"theme"`
	Title    string        `json:"title"`
	Counts   *Counts       `json:"counts,omitempty"`
	Messages []MessageCard `json:"messages,omitempty"`
	Todos    []TodoCard    `json:"todos,omitempty"`
	Actions  []Action      `json:"actions"`
}

// SelectView maps the previously clicked button onto a view. Anything
// outside the two view tokens, including no button at all, lands Home.
func SelectView(buttonValue string) View {
	switch buttonValue {
	case ButtonViewMessages:
		return ViewMessages
	case ButtonViewTodos:
		return ViewTodos
	default:
		return ViewHome
	}
}

// Compose derives the full view payload from the button input and a fresh
// snapshot. It is pure: callers fetch the snapshot per request.
func Compose(buttonValue string, snap contract.Snapshot, appURL string) Response {
	openApp := Action{Label: "Open App", URL: appURL}

	switch SelectView(buttonValue) {
	case ViewMessages:
		latest := recency.Latest(snap.Messages, latestCount)
		cards := make([]MessageCard, 0, len(latest))
		for _, m := range latest {
			cards = append(cards, MessageCard{
				Name: m.Name,
				Body: recency.Truncate(m.Message, maxMessageChars),
			})
		}
		return Response{
			View:     ViewMessages,
			Theme:    "gradient-purple",
			Title:    "Latest Messages",
			Messages: cards,
			Actions: []Action{
				{Label: "Home", Value: ButtonHome},
				openApp,
			},
		}
	case ViewTodos:
		latest := recency.Latest(snap.Todos, latestCount)
		cards := make([]TodoCard, 0, len(latest))
		for _, t := range latest {
			cards = append(cards, TodoCard{Title: t.Title, Completed: t.Completed, Likes: t.Likes})
		}
		return Response{
			View:  ViewTodos,
			Theme: "gradient-pink",
			Title: "Latest Todos",
			Todos: cards,
			Actions: []Action{
				{Label: "Home", Value: ButtonHome},
				openApp,
			},
		}
	default:
		counts := &Counts{Messages: len(snap.Messages), Todos: len(snap.Todos)}
		for _, t := range snap.Todos {
			if t.Completed {
				counts.Completed++
			}
		}
		return Response{
			View:   ViewHome,
			Theme:  "gradient-purple",
			Title:  "Guest Book",
			Counts: counts,
			Actions: []Action{
				{Label: "Messages", Value: ButtonViewMessages},
				{Label: "Todos", Value: ButtonViewTodos},
				openApp,
			},
		}
	}
}
