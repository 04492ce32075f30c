package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(ectologger.EctoLogMessage) {})
}

type fakeCommonNames struct {
	names map[string]bool
	err   error
}

func newFakeCommonNames(names ...string) *fakeCommonNames {
	f := &fakeCommonNames{names: make(map[string]bool)}
	for _, n := range names {
		f.names[strings.ToUpper(n)] = true
	}
	return f
}

func (f *fakeCommonNames) IsCommon(_ context.Context, lastName string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.names[strings.ToUpper(lastName)], nil
}

type fakeRecordStore struct {
	records map[int64]Record
	err     error
}

func newFakeRecordStore(records ...Record) *fakeRecordStore {
	s := &fakeRecordStore{records: make(map[int64]Record)}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeRecordStore) FetchByIDs(_ context.Context, ids []int64) ([]Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []Record
	for _, id := range ids {
		if r, ok := s.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeRecordStore) FetchByID(_ context.Context, id int64) (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}
	r, ok := s.records[id]
	if !ok {
		return Record{}, fmt.Errorf("entity %d: %w", id, ErrNotFound)
	}
	return r, nil
}

var errBoom = errors.New("boom")
