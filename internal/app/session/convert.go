package session

import (
	"time"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/app/check"
	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/domain/playlist"
	"github.com/osa030/cornerpocket/internal/domain/track"
	"github.com/osa030/cornerpocket/internal/infra/store"
)

// ToPlayerState converts a snapshot to its wire form.
func ToPlayerState(s playback.Snapshot) *playerv1.PlayerState {
	state := &playerv1.PlayerState{
		Status:          s.Status.String(),
		Index:           int32(s.Index),
		TrackCount:      int32(s.TrackCount),
		PositionMs:      s.Position.Milliseconds(),
		DurationMs:      s.Duration.Milliseconds(),
		DurationKnown:   s.DurationKnown,
		Volume:          s.Volume,
		Repeat:          s.Repeat.String(),
		Blocked:         s.Blocked,
		LastError:       s.LastError.String(),
		Generation:      uint64(s.Generation),
		ProgressPercent: s.ProgressPercent(),
		ActiveIndex:     int32(s.ActiveIndex()),
		TransportLabel:  s.TransportLabel(),
		VolumeLabel:     s.VolumePercentLabel(),
	}
	if s.TrackCount > 0 {
		state.Track = ToTrack(s.Index, s.Track)
	}
	return state
}

// ToTrack converts a playlist entry to its wire form.
func ToTrack(index int, t track.Track) *playerv1.Track {
	return &playerv1.Track{
		Index:     int32(index),
		ID:        t.ID,
		Title:     t.DisplayTitle(),
		AssetPath: t.AssetPath,
	}
}

// ToPlaylist converts a playlist to its wire form.
func ToPlaylist(pl *playlist.Playlist) *playerv1.GetPlaylistResponse {
	tracks := pl.Tracks()
	resp := &playerv1.GetPlaylistResponse{
		Name:   pl.Name(),
		Tracks: make([]*playerv1.Track, len(tracks)),
	}
	for i, t := range tracks {
		resp.Tracks[i] = ToTrack(i, t)
	}
	return resp
}

// ToCheckAssetsResponse converts a check report to its wire form.
func ToCheckAssetsResponse(r *check.Report) *playerv1.CheckAssetsResponse {
	resp := &playerv1.CheckAssetsResponse{
		Passed:  int32(r.Passed),
		Failed:  int32(r.Failed),
		Results: make([]*playerv1.AssetCheckResult, len(r.Tracks)),
	}
	for i, t := range r.Tracks {
		resp.Results[i] = &playerv1.AssetCheckResult{
			Index:   int32(t.Index),
			TrackID: t.TrackID,
			Title:   t.Title,
			Passed:  t.Result.Passed,
			Code:    t.Result.Code,
			Detail:  t.Result.Detail,
		}
	}
	return resp
}

// ToHistory converts history entries to their wire form.
func ToHistory(entries []store.HistoryEntry) *playerv1.GetHistoryResponse {
	resp := &playerv1.GetHistoryResponse{
		Entries: make([]*playerv1.HistoryEntry, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = &playerv1.HistoryEntry{
			ID:         e.ID,
			TrackID:    e.TrackID,
			Title:      e.Title,
			Outcome:    e.Outcome,
			PositionMs: e.Position.Milliseconds(),
			PlayedAt:   e.PlayedAt.UTC().Format(time.RFC3339),
		}
	}
	return resp
}
