package leads

import (
	"context"
	"errors"
	"sort"

	"github.com/wolfman30/hausservice-booking/pkg/logging"
)

// MergedLister reads every backing store a lead may have landed in and
// returns the union, oldest first. A store that fails to list is logged and
// skipped; List only errors when all of them fail.
type MergedLister struct {
	listers []Lister
	logger  *logging.Logger
}

// NewMergedLister combines listers; nil entries are ignored.
func NewMergedLister(logger *logging.Logger, listers ...Lister) *MergedLister {
	if logger == nil {
		logger = logging.Default()
	}
	m := &MergedLister{logger: logger}
	for _, l := range listers {
		if l != nil {
			m.listers = append(m.listers, l)
		}
	}
	return m
}

// List implements Lister.
func (m *MergedLister) List(ctx context.Context) ([]Lead, error) {
	var (
		out  []Lead
		errs []error
		seen = make(map[string]struct{})
	)
	for _, l := range m.listers {
		part, err := l.List(ctx)
		if err != nil {
			m.logger.Warn("lead list source failed", "error", err)
			errs = append(errs, err)
			continue
		}
		for _, lead := range part {
			if _, dup := seen[lead.ID]; dup {
				continue
			}
			seen[lead.ID] = struct{}{}
			out = append(out, lead)
		}
	}
	if len(errs) > 0 && len(errs) == len(m.listers) {
		return nil, errors.Join(errs...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
