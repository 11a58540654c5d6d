package extractor

import (
	"context"

	"icbcwatch/internal/monitor"
)

// Static returns a fixed candidate list on every run. Used for dry
// runs and tests; it never touches the booking site.
type Static struct {
	Candidates []monitor.RawCandidate
	Err        error
}

func (s *Static) Extract(context.Context) ([]monitor.RawCandidate, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]monitor.RawCandidate, len(s.Candidates))
	copy(out, s.Candidates)
	return out, nil
}
