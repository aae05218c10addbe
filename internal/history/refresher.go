package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/rotto/internal/common"
	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
)

// State is the refresh flow's position.
type State int

// Refresh states.
const (
	StateIdle State = iota
	StateFetching
	StateDisplaying
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateDisplaying:
		return "displaying"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Policy decides what the displayed view becomes when a fetch fails.
// The failure itself is always logged and returned.
type Policy int

// Failure policies.
const (
	// PolicyKeepStale keeps the previous view and marks it stale.
	PolicyKeepStale Policy = iota
	// PolicyClear replaces the view with an empty one for the requested filter.
	PolicyClear
	// PolicyRetry retries retryable failures with backoff, then keeps the previous view.
	PolicyRetry
)

func (p Policy) String() string {
	switch p {
	case PolicyClear:
		return "clear"
	case PolicyRetry:
		return "retry"
	default:
		return "keep-stale"
	}
}

// ParsePolicy parses a configured failure policy name.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "keep-stale", "stale":
		return PolicyKeepStale, nil
	case "clear":
		return PolicyClear, nil
	case "retry":
		return PolicyRetry, nil
	default:
		return PolicyKeepStale, fmt.Errorf("%w: failure policy %q must be keep-stale, clear, or retry", common.ErrInvalidConfig, s)
	}
}

// View is what the history screen shows.
type View struct {
	FetchedAt   time.Time
	AccountCode string
	Records     []model.TransactionRecord
	Sections    Buckets
	RequestID   uint64
	Filter      model.Filter
	// Stale is set when the view survived a failed fetch or was restored from storage.
	Stale bool
}

// Empty reports whether the view has nothing to show.
func (v View) Empty() bool {
	return len(v.Records) == 0
}

// Options configures a Refresher.
type Options struct {
	Location *time.Location
	Logger   *slog.Logger
	Clock    func() time.Time
	Retry    service.RetryOptions
	Policy   Policy
}

// Refresher runs the fetch-then-group flow. Only the most recently started
// refresh may change the view; older completions are discarded.
type Refresher struct {
	fetcher service.HistoryFetcher
	cancel  context.CancelFunc
	lastErr error
	opts    Options
	view    View
	account string
	seq     uint64
	filter  model.Filter
	state   State
	mu      sync.Mutex
	started bool
}

// NewRefresher creates a Refresher around fetcher.
func NewRefresher(fetcher service.HistoryFetcher, opts Options) *Refresher {
	if opts.Location == nil {
		opts.Location, _ = DisplayZone("")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	opts.Logger = opts.Logger.With("component", "history")

	return &Refresher{
		fetcher: fetcher,
		opts:    opts,
		state:   StateIdle,
	}
}

// Location returns the display zone.
func (r *Refresher) Location() *time.Location {
	return r.opts.Location
}

// Refresh fetches and groups the history for accountCode and filter.
//
// On success the new view is returned. On failure the view chosen by the
// policy is returned together with a *FetchError. If a newer Refresh started
// in the meantime, the result is discarded and ErrSuperseded is returned.
func (r *Refresher) Refresh(ctx context.Context, accountCode string, filter model.Filter) (View, error) {
	r.mu.Lock()
	r.seq++
	id := r.seq
	if r.cancel != nil {
		r.cancel()
	}
	reqCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.state = StateFetching
	r.account = accountCode
	r.filter = filter
	r.started = true
	r.mu.Unlock()
	defer cancel()

	r.opts.Logger.Debug("Refreshing history",
		"request_id", id,
		"account", accountCode,
		"filter", filter.String())

	records, err := r.fetch(reqCtx, accountCode, filter)

	r.mu.Lock()
	defer r.mu.Unlock()

	if id != r.seq {
		r.opts.Logger.Debug("Discarding superseded history result",
			"request_id", id,
			"latest_request_id", r.seq)
		return View{}, ErrSuperseded
	}
	r.cancel = nil

	if err != nil {
		fetchErr := &FetchError{
			Err:         err,
			AccountCode: accountCode,
			RequestID:   id,
			Kind:        Classify(err),
			Filter:      filter,
		}
		r.state = StateFailed
		r.lastErr = fetchErr

		common.LogError(err, "History fetch failed", common.Fields{
			"request_id": id,
			"account":    accountCode,
			"filter":     filter.String(),
			"kind":       fetchErr.Kind.String(),
			"policy":     r.opts.Policy.String(),
		})

		if r.opts.Policy == PolicyClear {
			r.view = View{
				FetchedAt:   r.opts.Clock(),
				AccountCode: accountCode,
				Sections:    Buckets{},
				RequestID:   id,
				Filter:      filter,
			}
		} else if r.view.RequestID != 0 || !r.view.FetchedAt.IsZero() {
			r.view.Stale = true
		}
		return r.view, fetchErr
	}

	r.view = View{
		FetchedAt:   r.opts.Clock(),
		AccountCode: accountCode,
		Records:     records,
		Sections:    GroupByDay(records, r.opts.Location),
		RequestID:   id,
		Filter:      filter,
	}
	r.state = StateDisplaying
	r.lastErr = nil

	r.opts.Logger.Info("History refreshed",
		"request_id", id,
		"filter", filter.String(),
		"records", len(records),
		"days", len(r.view.Sections))

	return r.view, nil
}

// Reload repeats the most recent Refresh from any state.
func (r *Refresher) Reload(ctx context.Context) (View, error) {
	r.mu.Lock()
	account, filter, started := r.account, r.filter, r.started
	r.mu.Unlock()

	if !started {
		return View{}, ErrNothingToReload
	}
	return r.Refresh(ctx, account, filter)
}

// Restore seeds the view with a last-known-good result, marked stale.
// It is ignored once the view holds a fetched result, and after a failure
// under PolicyClear.
func (r *Refresher) Restore(snapshot service.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.state == StateDisplaying, r.view.RequestID != 0:
		return
	case r.state == StateFailed && r.opts.Policy == PolicyClear:
		return
	}

	r.view = View{
		FetchedAt:   snapshot.FetchedAt,
		AccountCode: snapshot.AccountCode,
		Records:     snapshot.Records,
		Sections:    GroupByDay(snapshot.Records, r.opts.Location),
		Filter:      snapshot.Filter,
		Stale:       true,
	}
	if r.state == StateIdle {
		r.state = StateDisplaying
	}
}

// Current returns the state, the displayed view, and the last failure.
func (r *Refresher) Current() (State, View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.view, r.lastErr
}

// State returns the current state.
func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Latest returns the id of the most recently started refresh.
func (r *Refresher) Latest() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

func (r *Refresher) fetch(ctx context.Context, accountCode string, filter model.Filter) ([]model.TransactionRecord, error) {
	if r.opts.Policy != PolicyRetry {
		return r.fetcher.FetchHistory(ctx, accountCode, filter)
	}

	var records []model.TransactionRecord
	err := common.WithRetry(ctx, func() error {
		var fetchErr error
		records, fetchErr = r.fetcher.FetchHistory(ctx, accountCode, filter)
		return fetchErr
	}, r.opts.Retry)
	return records, err
}
