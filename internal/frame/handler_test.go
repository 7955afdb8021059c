package frame

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/winsznx/celo-guestbook/internal/contract"
	"go.uber.org/zap"
)

type fakeReader struct {
	messages []contract.Message
	todos    []contract.Todo
	err      error
}

func (f *fakeReader) AllMessages(ctx context.Context) ([]contract.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.messages, nil
}

func (f *fakeReader) AllTodos(ctx context.Context) ([]contract.Todo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.todos, nil
}

func (f *fakeReader) UserTodos(ctx context.Context, account contract.Address) ([]contract.Todo, error) {
	return nil, errors.New("not used by frames")
}

func (f *fakeReader) PassBalance(ctx context.Context, account contract.Address) (uint64, error) {
	return 0, errors.New("not used by frames")
}

func (f *fakeReader) TodoCreationFee(ctx context.Context) (*big.Int, error) {
	return nil, errors.New("not used by frames")
}

func newTestServer(reader contract.Reader) *httptest.Server {
	r := chi.NewRouter()
	r.Route("/frame", NewHandler(reader, "https://guestbook.app", zap.NewNop()).Routes)
	return httptest.NewServer(r)
}

func decodeResponse(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}

func TestGetDefaultsToHome(t *testing.T) {
	srv := newTestServer(&fakeReader{
		messages: []contract.Message{{Message: "hi"}},
		todos:    []contract.Todo{{Title: "t1", Completed: true}},
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/frame")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	out := decodeResponse(t, resp)
	if out.View != ViewHome {
		t.Fatalf("expected home view, got %s", out.View)
	}
	if out.Counts == nil || out.Counts.Messages != 1 || out.Counts.Completed != 1 {
		t.Fatalf("unexpected counts: %+v", out.Counts)
	}
}

func TestPostButtonSelectsView(t *testing.T) {
	srv := newTestServer(&fakeReader{messages: []contract.Message{{Name: "ada", Message: "hi"}}})
	defer srv.Close()

	// Real frame actions carry extra fields; they must not break decoding.
	body := `{"buttonValue":"view_messages","fid":42,"castHash":"0xabc"}`
	resp, err := http.Post(srv.URL+"/frame", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	out := decodeResponse(t, resp)
	if out.View != ViewMessages {
		t.Fatalf("expected messages view, got %s", out.View)
	}
	if len(out.Messages) != 1 || out.Messages[0].Name != "ada" {
		t.Fatalf("unexpected cards: %+v", out.Messages)
	}
}

func TestGetAndPostProduceSameShape(t *testing.T) {
	srv := newTestServer(&fakeReader{messages: []contract.Message{{Name: "ada", Message: "hi"}}})
	defer srv.Close()

	getResp, err := http.Get(srv.URL + "/frame?buttonValue=view_messages")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	postResp, err := http.Post(srv.URL+"/frame", "application/json", strings.NewReader(`{"buttonValue":"view_messages"}`))
	if err != nil {
		t.Fatalf("post failed: %v", err)
	}

	got := decodeResponse(t, getResp)
	want := decodeResponse(t, postResp)
	if got.View != want.View || got.Title != want.Title || len(got.Messages) != len(want.Messages) {
		t.Fatalf("verb changed the response: GET %+v vs POST %+v", got, want)
	}
}

func TestReadFailureStillRenders(t *testing.T) {
	srv := newTestServer(&fakeReader{err: errors.New("rpc down")})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/frame")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	out := decodeResponse(t, resp)
	if out.View != ViewHome {
		t.Fatalf("expected home view, got %s", out.View)
	}
	if out.Counts.Messages != 0 || out.Counts.Todos != 0 {
		t.Fatalf("expected zero counts on read failure, got %+v", out.Counts)
	}
	if len(out.Actions) == 0 {
		t.Fatal("expected actions even on read failure")
	}
}
