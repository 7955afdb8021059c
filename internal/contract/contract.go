// Package contract defines the narrow capability set the application
// requires from the on-chain guestbook contract. The contract itself is an
// external collaborator; everything here is an abstract surface with no
// particular network binding.
package contract

import (
	"context"
	"math/big"
)

// Address is a checksummed or lowercase hex account address.
type Address string

// Operation names a state-changing contract call.
type Operation string

const (
	OpMint        Operation = "mint"
	OpPostMessage Operation = "post_message"
	OpCreateTodo  Operation = "create_todo"
	OpToggleTodo  Operation = "toggle_todo"
	OpDeleteTodo  Operation = "delete_todo"
	OpLikeTodo    Operation = "like_todo"
)

// Message is a single guestbook entry as returned by getAllMessages.
type Message struct {
	Sender    Address `json:"sender"`
	Message   string  `json:"message"`
	Name      string  `json:"name"`
	Timestamp int64   `json:"timestamp"`
}

// Todo is a community todo item as returned by getAllTodos/getUserTodos.
type Todo struct {
	ID          uint64  `json:"id"`
	Creator     Address `json:"creator"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Likes       uint64  `json:"likes"`
	Timestamp   int64   `json:"timestamp"`
}

// Snapshot is a read-only view of contract state. It is fetched, never
// mutated locally; mutation only happens on-chain and is observed by
// re-requesting it.
type Snapshot struct {
	Messages []Message `json:"messages"`
	Todos    []Todo    `json:"todos"`
}

// TxHandle identifies a broadcast transaction awaiting confirmation.
type TxHandle string

// Request is a state-changing call, immutable once submitted.
type Request struct {
	Operation Operation `json:"operation"`
	Args      []any     `json:"args"`
	Value     *big.Int  `json:"value_wei,omitempty"`
}

// Reader is the read-only capability set.
type Reader interface {
	AllMessages(ctx context.Context) ([]Message, error)
	AllTodos(ctx context.Context) ([]Todo, error)
	UserTodos(ctx context.Context, account Address) ([]Todo, error)
	PassBalance(ctx context.Context, account Address) (uint64, error)
	TodoCreationFee(ctx context.Context) (*big.Int, error)
}

// Submitter broadcasts signed transactions and awaits their confirmation.
type Submitter interface {
	// Submit broadcasts the request. It fails with *SubmissionError on
	// signature rejection or broadcast failure.
	Submit(ctx context.Context, req Request) (TxHandle, error)
	// AwaitConfirmation blocks until the chain accepts or rejects the
	// transaction. It fails with *ConfirmationError on chain-side failure.
	AwaitConfirmation(ctx context.Context, handle TxHandle) error
}

// Fees charged by the contract for minting an access pass and posting a
// message. The todo creation fee is read from the contract instead.
var (
	MintFee    = celoWei("10000000000000000")  // 0.01 CELO
	MessageFee = celoWei("1000000000000000")   // 0.001 CELO
)

func celoWei(dec string) *big.Int {
	v, ok := new(big.Int).SetString(dec, 10)
	if !ok {
		panic("contract: bad wei constant " + dec)
	}
	return v
}
