package app

import (
	"context"

	apperrors "github.com/louisbranch/obtuse.units/internal/platform/errors"
	"github.com/louisbranch/obtuse.units/internal/platform/pagination"
	"github.com/louisbranch/obtuse.units/internal/services/obtuse/storage"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100

	orderNewestFirst = "created_at desc"
	orderOldestFirst = "created_at asc"
)

// HistoryQuery pages through recorded calls.
type HistoryQuery struct {
	// Filter is an AIP-160 expression, e.g. `code = "OK" AND loops >= 3`.
	Filter    string
	PageSize  int
	PageToken string
	// OrderBy is "created_at desc" (default) or "created_at asc".
	OrderBy string
}

// HistoryPage is one page of recorded calls.
type HistoryPage struct {
	Calls         []storage.CallRecord
	NextPageToken string
}

// History lists recorded calls.
func (s *Service) History(ctx context.Context, query HistoryQuery) (HistoryPage, error) {
	if s.history == nil {
		return HistoryPage{}, apperrors.New(apperrors.CodeHistoryDisabled, "history is disabled")
	}

	pageSize := pagination.ClampPageSize(query.PageSize, pagination.PageSizeConfig{
		Default: defaultHistoryPageSize,
		Max:     maxHistoryPageSize,
	})
	orderBy, err := pagination.NormalizeOrderBy(query.OrderBy, pagination.OrderByConfig{
		Default: orderNewestFirst,
		Allowed: []string{orderNewestFirst, orderOldestFirst},
	})
	if err != nil {
		return HistoryPage{}, apperrors.WrapWithMetadata(apperrors.CodeInvalidOptions, err.Error(),
			map[string]string{"Reason": err.Error()}, err)
	}
	offset, err := pagination.DecodeOffset(query.PageToken)
	if err != nil {
		return HistoryPage{}, mapError(err)
	}

	// One extra row tells whether another page exists.
	calls, err := s.history.ListCalls(ctx, storage.CallQuery{
		Filter:      query.Filter,
		Limit:       pageSize + 1,
		Offset:      offset,
		OldestFirst: orderBy == orderOldestFirst,
	})
	if err != nil {
		return HistoryPage{}, mapStorageError(err, 0)
	}

	page := HistoryPage{Calls: calls}
	if len(calls) > pageSize {
		page.Calls = calls[:pageSize]
		page.NextPageToken = pagination.EncodeOffset(offset + pageSize)
	}
	return page, nil
}
