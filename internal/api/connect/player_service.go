// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/api/player/v1/playerv1connect"
	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/app/session"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// PlayerService implements the PlayerService RPC.
type PlayerService struct {
	session *session.Manager
}

// NewPlayerService creates a new PlayerService.
func NewPlayerService(session *session.Manager) *PlayerService {
	return &PlayerService{session: session}
}

// Ensure PlayerService implements the interface.
var _ playerv1connect.PlayerServiceHandler = (*PlayerService)(nil)

// GetState returns the current player state.
func (s *PlayerService) GetState(
	ctx context.Context,
	req *connect.Request[playerv1.GetStateRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	return stateResponse(s.session.Snapshot(), nil)
}

// GetPlaylist returns the playlist.
func (s *PlayerService) GetPlaylist(
	ctx context.Context,
	req *connect.Request[playerv1.GetPlaylistRequest],
) (*connect.Response[playerv1.GetPlaylistResponse], error) {
	return connect.NewResponse(session.ToPlaylist(s.session.Playlist())), nil
}

// SelectTrack makes a track current.
func (s *PlayerService) SelectTrack(
	ctx context.Context,
	req *connect.Request[playerv1.SelectTrackRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	return stateResponse(s.session.SelectTrack(ctx, int(req.Msg.Index)))
}

// Next moves to the next track.
func (s *PlayerService) Next(
	ctx context.Context,
	req *connect.Request[playerv1.NextRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	return stateResponse(s.session.Next(ctx))
}

// Previous moves to the previous track.
func (s *PlayerService) Previous(
	ctx context.Context,
	req *connect.Request[playerv1.PreviousRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	return stateResponse(s.session.Previous(ctx))
}

// Play starts playback.
func (s *PlayerService) Play(
	ctx context.Context,
	req *connect.Request[playerv1.PlayRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	return stateResponse(s.session.Play(ctx))
}

// Pause pauses playback.
func (s *PlayerService) Pause(
	ctx context.Context,
	req *connect.Request[playerv1.PauseRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	return stateResponse(s.session.Pause(ctx))
}

// TogglePlay toggles playback.
func (s *PlayerService) TogglePlay(
	ctx context.Context,
	req *connect.Request[playerv1.TogglePlayRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	return stateResponse(s.session.TogglePlay(ctx))
}

// Seek moves the playback position.
func (s *PlayerService) Seek(
	ctx context.Context,
	req *connect.Request[playerv1.SeekRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	position := time.Duration(req.Msg.PositionMs) * time.Millisecond
	return stateResponse(s.session.Seek(ctx, position))
}

// SetVolume sets the volume.
func (s *PlayerService) SetVolume(
	ctx context.Context,
	req *connect.Request[playerv1.SetVolumeRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	return stateResponse(s.session.SetVolume(ctx, req.Msg.Volume))
}

// SetRepeat sets the repeat mode.
func (s *PlayerService) SetRepeat(
	ctx context.Context,
	req *connect.Request[playerv1.SetRepeatRequest],
) (*connect.Response[playerv1.StateResponse], error) {
	mode, err := playback.ParseRepeatMode(req.Msg.Repeat)
	if err != nil {
		return nil, toConnectError(err)
	}
	return stateResponse(s.session.SetRepeat(ctx, mode))
}

// CheckAssets runs the asset checks over the playlist.
func (s *PlayerService) CheckAssets(
	ctx context.Context,
	req *connect.Request[playerv1.CheckAssetsRequest],
) (*connect.Response[playerv1.CheckAssetsResponse], error) {
	report, err := s.session.CheckAssets(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(session.ToCheckAssetsResponse(report)), nil
}

// GetHistory returns recent plays, newest first.
func (s *PlayerService) GetHistory(
	ctx context.Context,
	req *connect.Request[playerv1.GetHistoryRequest],
) (*connect.Response[playerv1.GetHistoryResponse], error) {
	limit := int(req.Msg.Limit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	entries, err := s.session.History(ctx, limit)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(session.ToHistory(entries)), nil
}

// Subscribe streams an initial state followed by every change notification.
func (s *PlayerService) Subscribe(
	ctx context.Context,
	req *connect.Request[playerv1.SubscribeRequest],
	stream *connect.ServerStream[playerv1.Notification],
) error {
	notifManager := s.session.GetNotificationManager()
	adapter := &notificationStreamAdapter{stream: stream}

	// Hold the adapter until the initial state is out so it is always first.
	adapter.mu.Lock()
	subscriptionID, dropped := notifManager.Subscribe(adapter)
	defer notifManager.Unsubscribe(subscriptionID)

	initial := &playerv1.Notification{
		Type:       playerv1.NotificationTypeInitialState,
		SequenceNo: notifManager.NextSequenceNo(),
		State:      session.ToPlayerState(s.session.Snapshot()),
	}
	err := stream.Send(initial)
	adapter.mu.Unlock()
	if err != nil {
		return err
	}
	zlog.Debug().Msgf("connect: subscriber attached: id=%s", subscriptionID)

	// Wait for context cancellation, a dropped subscription or session end
	select {
	case <-ctx.Done():
	case <-dropped:
	case <-s.session.Done():
	}
	return nil
}

// notificationStreamAdapter adapts connect.ServerStream to notification.Stream.
type notificationStreamAdapter struct {
	mu     sync.Mutex
	stream *connect.ServerStream[playerv1.Notification]
}

func (a *notificationStreamAdapter) Send(notification *playerv1.Notification) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stream.Send(notification)
}

func stateResponse(snapshot playback.Snapshot, err error) (*connect.Response[playerv1.StateResponse], error) {
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&playerv1.StateResponse{
		State: session.ToPlayerState(snapshot),
	}), nil
}

// toConnectError maps controller and session errors to RPC codes.
func toConnectError(err error) *connect.Error {
	switch {
	case errors.Is(err, playback.ErrIndexOutOfRange),
		errors.Is(err, playback.ErrPositionOutOfRange),
		errors.Is(err, playback.ErrVolumeOutOfRange),
		errors.Is(err, playback.ErrUnknownRepeatMode):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, playback.ErrWrongState),
		errors.Is(err, playback.ErrDurationUnknown),
		errors.Is(err, playback.ErrPlaybackBlocked),
		errors.Is(err, session.ErrChecksUnavailable),
		errors.Is(err, session.ErrHistoryDisabled):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, session.ErrSessionNotRunning):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		zlog.Error().Msgf("connect: internal error: %v", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}
