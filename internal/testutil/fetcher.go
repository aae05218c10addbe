package testutil

import (
	"context"
	"sync"

	"github.com/Veraticus/rotto/internal/model"
	"github.com/Veraticus/rotto/internal/service"
)

// FetchCall records one FetchHistory invocation.
type FetchCall struct {
	AccountCode string
	Filter      model.Filter
}

// FakeFetcher is a scriptable service.HistoryFetcher.
// Responses are keyed by filter; Gates let a test hold a call open.
type FakeFetcher struct {
	Records map[model.Filter][]model.TransactionRecord
	Errors  map[model.Filter][]error
	gates   map[model.Filter][]chan struct{}
	calls   []FetchCall
	mu      sync.Mutex
}

var _ service.HistoryFetcher = (*FakeFetcher)(nil)

// NewFakeFetcher serves records filtered from all for every filter.
func NewFakeFetcher(all []model.TransactionRecord) *FakeFetcher {
	f := &FakeFetcher{
		Records: make(map[model.Filter][]model.TransactionRecord),
		Errors:  make(map[model.Filter][]error),
		gates:   make(map[model.Filter][]chan struct{}),
	}
	for _, filter := range model.AllFilters {
		var out []model.TransactionRecord
		for _, r := range all {
			if filter.Matches(r) {
				out = append(out, r)
			}
		}
		f.Records[filter] = out
	}
	return f
}

// FailNext queues errors returned, in order, by the next calls for filter.
func (f *FakeFetcher) FailNext(filter model.Filter, errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[filter] = append(f.Errors[filter], errs...)
}

// Hold makes the next call for filter block until the returned func is called.
// The held call ignores context cancellation so a test can resolve it late.
func (f *FakeFetcher) Hold(filter model.Filter) (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gates[filter] = append(f.gates[filter], gate)
	f.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// FetchHistory implements service.HistoryFetcher.
func (f *FakeFetcher) FetchHistory(_ context.Context, accountCode string, filter model.Filter) ([]model.TransactionRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, FetchCall{AccountCode: accountCode, Filter: filter})
	var gate chan struct{}
	if gates := f.gates[filter]; len(gates) > 0 {
		gate = gates[0]
		f.gates[filter] = gates[1:]
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if errs := f.Errors[filter]; len(errs) > 0 {
		err := errs[0]
		f.Errors[filter] = errs[1:]
		if err != nil {
			return nil, err
		}
	}

	records := f.Records[filter]
	out := make([]model.TransactionRecord, len(records))
	copy(out, records)
	return out, nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeFetcher) Calls() []FetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FetchCall, len(f.calls))
	copy(out, f.calls)
	return out
}
