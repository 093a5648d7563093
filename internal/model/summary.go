package model

import "time"

// Summary is a condensed view of a RunReport.
type Summary struct {
	RunID      string        `json:"run_id"`
	Mode       Mode          `json:"mode"`
	StartedAt  time.Time     `json:"started_at"`
	Elapsed    time.Duration `json:"elapsed_ns"`
	Inputs     int           `json:"inputs"`
	Kept       int           `json:"kept"`
	Dropped    int           `json:"dropped"`
	Failed     int           `json:"failed"`
	Filtered   int           `json:"filtered"`
	LinesTotal int           `json:"lines_total,omitempty"`
	LinesKept  int           `json:"lines_kept,omitempty"`

	// Clusters maps an admitted document ID to the IDs dropped as its duplicates.
	Clusters map[string][]string `json:"clusters,omitempty"`
}

// NewSummary builds a Summary from a RunReport.
func NewSummary(r *RunReport) *Summary {
	s := &Summary{
		RunID:     r.RunID,
		Mode:      r.Mode,
		StartedAt: r.StartedAt,
		Elapsed:   r.Elapsed(),
		Failed:    len(r.Failures),
		Filtered:  len(r.Filtered),
	}
	s.Inputs = len(r.Documents) + s.Failed + s.Filtered

	for _, d := range r.Documents {
		if d.Kept {
			s.Kept++
		} else {
			s.Dropped++
		}
		s.LinesTotal += d.LinesTotal
		s.LinesKept += d.LinesKept

		if d.DuplicateOf != "" {
			if s.Clusters == nil {
				s.Clusters = make(map[string][]string)
			}
			s.Clusters[d.DuplicateOf] = append(s.Clusters[d.DuplicateOf], d.ID)
		}
	}

	return s
}

// LinesDropped returns the number of boilerplate lines removed.
func (s *Summary) LinesDropped() int {
	return s.LinesTotal - s.LinesKept
}

// DropRatio returns the share of processed documents that were dropped.
func (s *Summary) DropRatio() float64 {
	processed := s.Kept + s.Dropped
	if processed == 0 {
		return 0
	}
	return float64(s.Dropped) / float64(processed)
}

// HasFailures reports whether any document was skipped.
func (s *Summary) HasFailures() bool {
	return s.Failed > 0
}
