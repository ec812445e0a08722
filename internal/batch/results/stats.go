package results

import "github.com/handwriteio/batchview/internal/batch/entity"

// Stats summarizes whole-batch row tallies derived from the metadata
// snapshot. Construction is total; missing counts read as zero.
type Stats struct {
	TotalRows    int64
	AcceptedRows int64
	DeletedRows  int64
	SkippedRows  int64
}

func newStats(meta entity.BatchMeta) Stats {
	s := Stats{
		TotalRows:    meta.Counts.Total,
		AcceptedRows: meta.Counts.Accepted,
		DeletedRows:  meta.Counts.Deleted,
	}
	if meta.SkippedRows != nil {
		s.SkippedRows = *meta.SkippedRows
	}
	return s
}

// AcceptanceRate returns accepted rows over total rows, zero when the batch
// holds no rows.
func (s Stats) AcceptanceRate() float64 {
	if s.TotalRows == 0 {
		return 0
	}
	return float64(s.AcceptedRows) / float64(s.TotalRows)
}
