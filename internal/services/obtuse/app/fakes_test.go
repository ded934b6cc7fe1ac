package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/louisbranch/obtuse.units/internal/services/obtuse/storage"
)

type fakeHistoryStore struct {
	calls     []storage.CallRecord
	recordErr error
}

func (f *fakeHistoryStore) RecordCall(_ context.Context, call storage.CallRecord) (int64, error) {
	if f.recordErr != nil {
		return 0, f.recordErr
	}
	call.ID = int64(len(f.calls) + 1)
	f.calls = append(f.calls, call)
	return call.ID, nil
}

func (f *fakeHistoryStore) GetCall(_ context.Context, id int64) (storage.CallRecord, error) {
	for _, call := range f.calls {
		if call.ID == id {
			return call, nil
		}
	}
	return storage.CallRecord{}, storage.ErrNotFound
}

// ListCalls ignores filters other than "bad", which fails to parse.
func (f *fakeHistoryStore) ListCalls(_ context.Context, query storage.CallQuery) ([]storage.CallRecord, error) {
	if strings.TrimSpace(query.Filter) == "bad" {
		return nil, fmt.Errorf("%w: bad", storage.ErrInvalidFilter)
	}
	ordered := make([]storage.CallRecord, 0, len(f.calls))
	if query.OldestFirst {
		ordered = append(ordered, f.calls...)
	} else {
		for i := len(f.calls) - 1; i >= 0; i-- {
			ordered = append(ordered, f.calls[i])
		}
	}
	if query.Offset >= len(ordered) {
		return nil, nil
	}
	ordered = ordered[query.Offset:]
	if len(ordered) > query.Limit {
		ordered = ordered[:query.Limit]
	}
	return ordered, nil
}

var _ storage.HistoryStore = (*fakeHistoryStore)(nil)
