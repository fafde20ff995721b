package check

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/domain/playlist"
	"github.com/osa030/cornerpocket/internal/infra/assets"
)

// Getter fetches an asset for inspection.
type Getter interface {
	Get(ctx context.Context, assetPath string) (*assets.Response, error)
}

// TrackResult is the outcome for one playlist entry.
type TrackResult struct {
	Index   int
	TrackID string
	Title   string
	Result
}

// Report summarizes a run over a playlist.
type Report struct {
	Tracks []TrackResult
	Passed int
	Failed int
}

// OK reports whether every track passed.
func (r *Report) OK() bool {
	return r.Failed == 0
}

// Runner runs a chain over every track of a playlist.
type Runner struct {
	chain  *Chain
	getter Getter
}

// NewRunner creates a new runner.
func NewRunner(chain *Chain, getter Getter) *Runner {
	return &Runner{chain: chain, getter: getter}
}

// Run checks every track in playlist order. Fetch failures count as "unreachable".
func (r *Runner) Run(ctx context.Context, pl *playlist.Playlist) (*Report, error) {
	report := &Report{Tracks: make([]TrackResult, 0, pl.Len())}

	for i, t := range pl.Tracks() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tr := TrackResult{Index: i, TrackID: t.ID, Title: t.DisplayTitle()}
		resp, err := r.getter.Get(ctx, t.AssetPath)
		if err != nil {
			tr.Result = Fail("unreachable", err.Error())
		} else {
			tr.Result = r.chain.Execute(ctx, t, resp)
		}

		if tr.Passed {
			report.Passed++
		} else {
			report.Failed++
			zlog.Warn().Msgf("check: asset failed: index=%d id=%s code=%s detail=%s", i, t.ID, tr.Code, tr.Detail)
		}
		report.Tracks = append(report.Tracks, tr)
	}

	zlog.Info().Msgf("check: finished: passed=%d failed=%d", report.Passed, report.Failed)
	return report, nil
}
