// Package wire holds the message and duty vocabulary shared by the
// adult side (C2) and the elder side (C4): the tagged unions a real
// wire codec would (de)serialize, plus the C5 reply-envelope builders.
// Nothing in this package touches a socket - that transport is an
// external collaborator (spec.md §1).
/*
 * Copyright (c) 2024, the module authors. All rights reserved.
 */
package wire

import "github.com/xornet-io/vault/cluster/meta"

// ErrorMessage enumerates the client-visible error kinds from
// spec.md §7. DataExists is deliberately absent: it is normalized to
// success at the chunk-handler boundary and never escapes as an error.
type ErrorMessage struct {
	Kind   ErrorKind
	Prefix meta.Prefix      // set only for NoAdults
	Addr   meta.BlobAddress // set only for DataNotFound
	Owner  meta.PublicKey   // set only for InvalidOwners
	Detail string           // set only for InvalidOperation and StoreFailure
}

type ErrorKind int

const (
	ErrNoSuchKey ErrorKind = iota
	ErrInvalidOwners
	ErrInvalidOperation
	ErrFailedToDelete
	ErrNoAdults
	ErrDataNotFound
	ErrStoreFailure
)

func (e ErrorMessage) Error() string {
	switch e.Kind {
	case ErrNoSuchKey:
		return "no such key"
	case ErrInvalidOwners:
		return "invalid owners: " + e.Owner.String()
	case ErrInvalidOperation:
		return "invalid operation: " + e.Detail
	case ErrFailedToDelete:
		return "failed to delete"
	case ErrNoAdults:
		return "no adults available in section " + e.Prefix.String()
	case ErrDataNotFound:
		return "data not found: " + e.Addr.String()
	case ErrStoreFailure:
		return "store failure: " + e.Detail
	default:
		return "unknown error"
	}
}

// CmdError is the envelope a command-side failure travels in.
type CmdError struct {
	Data ErrorMessage
}

// GetBlobResult is the outcome of an adult answering a Get query.
type GetBlobResult struct {
	Blob meta.Blob
	Err  *ErrorMessage // nil on success
}

func (r GetBlobResult) IsSuccess() bool { return r.Err == nil }

// CmdResult is the outcome of an adult handling a write/delete command.
type CmdResult struct {
	Err *CmdError // nil on success
}

func (r CmdResult) IsSuccess() bool { return r.Err == nil }

// LogicError marks a protocol invariant violation (spec.md §7):
// internal-only, fatal at the handler level, never sent to a client.
type LogicError struct{ Msg string }

func (e LogicError) Error() string { return "logic: " + e.Msg }
