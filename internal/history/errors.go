package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/model"
)

var (
	// ErrSuperseded is returned for a refresh whose result was discarded
	// because a newer refresh started before it completed.
	ErrSuperseded = errors.New("refresh superseded by a newer request")
	// ErrNothingToReload is returned by Reload before any Refresh.
	ErrNothingToReload = errors.New("no previous refresh to reload")
)

// ErrorKind classifies why a fetch failed.
type ErrorKind int

// Error kinds.
const (
	KindNetwork ErrorKind = iota
	KindServer
	KindNotFound
	KindUnauthorized
	KindDecode
	KindCanceled
)

func (k ErrorKind) String() string {
	switch k {
	case KindServer:
		return "server"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindDecode:
		return "decode"
	case KindCanceled:
		return "canceled"
	default:
		return "network"
	}
}

// FetchError reports a failed history fetch.
type FetchError struct {
	Err         error
	AccountCode string
	RequestID   uint64
	Kind        ErrorKind
	Filter      model.Filter
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s history for account %s (%s): %v",
		e.Filter, e.AccountCode, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Classify maps a fetcher error onto an ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, common.ErrAccountNotFound), errors.Is(err, common.ErrInvalidAccount):
		return KindNotFound
	case errors.Is(err, common.ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, common.ErrDecode):
		return KindDecode
	case errors.Is(err, common.ErrServer):
		return KindServer
	default:
		return KindNetwork
	}
}
