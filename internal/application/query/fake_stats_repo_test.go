package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"tourism-marketplace/internal/domain/repository"
)

var errConnRefused = errors.New("connection refused")

// fakeStatsRepo answers from maps keyed by "source" or "source|field=value"
// (equality conditions only). Exact keys win over the bare source key.
type fakeStatsRepo struct {
	mu sync.Mutex

	counts map[string]int64
	groups map[string][]repository.GroupCount
	sums   map[string]float64

	failing map[repository.Source]bool
	hanging map[repository.Source]bool
	// failTimes makes the first n calls for a key fail
	failTimes map[string]int
	delay     time.Duration

	calls    map[repository.Source]int
	recorded []fakeCall
	inFlight int32
	maxSeen  int32
}

// fakeCall is one repository call with the full criteria it was given
type fakeCall struct {
	method   string
	source   repository.Source
	field    string
	criteria repository.Criteria
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{
		counts:    map[string]int64{},
		groups:    map[string][]repository.GroupCount{},
		sums:      map[string]float64{},
		failing:   map[repository.Source]bool{},
		hanging:   map[repository.Source]bool{},
		failTimes: map[string]int{},
		calls:     map[repository.Source]int{},
	}
}

func fakeKey(source repository.Source, criteria repository.Criteria) string {
	parts := []string{string(source)}
	for _, c := range criteria {
		if c.Operator == repository.OpEq {
			parts = append(parts, fmt.Sprintf("%s=%v", c.Field, c.Value))
		}
	}
	return strings.Join(parts, "|")
}

func (f *fakeStatsRepo) enter(ctx context.Context, call fakeCall, key string) error {
	source := call.source
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		seen := atomic.LoadInt32(&f.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&f.maxSeen, seen, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls[source]++
	f.recorded = append(f.recorded, call)
	failing := f.failing[source]
	hanging := f.hanging[source]
	flaky := f.failTimes[key] > 0
	if flaky {
		f.failTimes[key]--
	}
	f.mu.Unlock()

	if hanging {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if failing || flaky {
		return errConnRefused
	}
	return nil
}

func (f *fakeStatsRepo) Count(ctx context.Context, source repository.Source, criteria repository.Criteria) (int64, error) {
	key := fakeKey(source, criteria)
	if err := f.enter(ctx, fakeCall{method: "Count", source: source, criteria: criteria}, key); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.counts[key]; ok {
		return v, nil
	}
	return f.counts[string(source)], nil
}

func (f *fakeStatsRepo) CountBy(ctx context.Context, source repository.Source, field string, criteria repository.Criteria) ([]repository.GroupCount, error) {
	key := fakeKey(source, criteria) + "#" + field
	if err := f.enter(ctx, fakeCall{method: "CountBy", source: source, field: field, criteria: criteria}, key); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.groups[key], nil
}

func (f *fakeStatsRepo) Sum(ctx context.Context, source repository.Source, field string, criteria repository.Criteria) (float64, error) {
	key := string(source) + "#" + field
	if err := f.enter(ctx, fakeCall{method: "Sum", source: source, field: field, criteria: criteria}, key); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sums[key], nil
}

func (f *fakeStatsRepo) Ping(ctx context.Context) error {
	return nil
}

func (f *fakeStatsRepo) callsTo(source repository.Source) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[source]
}

// conditionsOn returns every condition on field passed to method for source.
// groupField narrows CountBy and Sum calls to the given aggregation field.
func (f *fakeStatsRepo) conditionsOn(method string, source repository.Source, groupField, field string) []repository.Condition {
	f.mu.Lock()
	defer f.mu.Unlock()

	var found []repository.Condition
	for _, call := range f.recorded {
		if call.method != method || call.source != source || call.field != groupField {
			continue
		}
		for _, c := range call.criteria {
			if c.Field == field {
				found = append(found, c)
			}
		}
	}
	return found
}
