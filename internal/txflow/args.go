package txflow

import (
	"math/big"

	"github.com/winsznx/celo-guestbook/internal/contract"
)

// Args carries the operation-specific inputs of a transaction. The
// interface is closed: every operation class the contract supports has
// exactly one Args type here.
type Args interface {
	Operation() contract.Operation
	request() contract.Request
}

// MintArgs mints an access pass. No extra inputs, fixed mint fee.
type MintArgs struct{}

func (MintArgs) Operation() contract.Operation { return contract.OpMint }

func (MintArgs) request() contract.Request {
	return contract.Request{Operation: contract.OpMint, Value: contract.MintFee}
}

// PostMessageArgs posts a guestbook entry. Both fields are required;
// limits match the contract-side form constraints.
type PostMessageArgs struct {
	Name    string `json:"name" validate:"required,max=50"`
	Message string `json:"message" validate:"required,max=280"`
}

func (PostMessageArgs) Operation() contract.Operation { return contract.OpPostMessage }

func (a PostMessageArgs) request() contract.Request {
	return contract.Request{
		Operation: contract.OpPostMessage,
		Args:      []any{a.Name, a.Message},
		Value:     contract.MessageFee,
	}
}

// CreateTodoArgs creates a community todo. Fee is the creation fee read
// from the contract by the caller and attached as the transaction value.
type CreateTodoArgs struct {
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Fee         *big.Int `json:"-" validate:"required"`
}

func (CreateTodoArgs) Operation() contract.Operation { return contract.OpCreateTodo }

func (a CreateTodoArgs) request() contract.Request {
	return contract.Request{
		Operation: contract.OpCreateTodo,
		Args:      []any{a.Title, a.Description},
		Value:     a.Fee,
	}
}

// ToggleTodoArgs flips a todo's completed flag.
type ToggleTodoArgs struct {
	ID uint64 `json:"id"`
}

func (ToggleTodoArgs) Operation() contract.Operation { return contract.OpToggleTodo }

func (a ToggleTodoArgs) request() contract.Request {
	return contract.Request{Operation: contract.OpToggleTodo, Args: []any{a.ID}}
}

// DeleteTodoArgs removes a todo owned by the caller.
type DeleteTodoArgs struct {
	ID uint64 `json:"id"`
}

func (DeleteTodoArgs) Operation() contract.Operation { return contract.OpDeleteTodo }

func (a DeleteTodoArgs) request() contract.Request {
	return contract.Request{Operation: contract.OpDeleteTodo, Args: []any{a.ID}}
}

// LikeTodoArgs toggles the caller's like on a todo.
type LikeTodoArgs struct {
	ID uint64 `json:"id"`
}

func (LikeTodoArgs) Operation() contract.Operation { return contract.OpLikeTodo }

func (a LikeTodoArgs) request() contract.Request {
	return contract.Request{Operation: contract.OpLikeTodo, Args: []any{a.ID}}
}
