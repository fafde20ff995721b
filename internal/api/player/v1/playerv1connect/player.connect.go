// Package playerv1connect wires the player.v1 API to Connect handlers and clients.
package playerv1connect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
)

// PlayerServiceName is the fully-qualified name of the PlayerService service.
const PlayerServiceName = "player.v1.PlayerService"

// Procedure paths of PlayerService.
const (
	PlayerServiceGetStateProcedure    = "/player.v1.PlayerService/GetState"
	PlayerServiceGetPlaylistProcedure = "/player.v1.PlayerService/GetPlaylist"
	PlayerServiceSelectTrackProcedure = "/player.v1.PlayerService/SelectTrack"
	PlayerServiceNextProcedure        = "/player.v1.PlayerService/Next"
	PlayerServicePreviousProcedure    = "/player.v1.PlayerService/Previous"
	PlayerServicePlayProcedure        = "/player.v1.PlayerService/Play"
	PlayerServicePauseProcedure       = "/player.v1.PlayerService/Pause"
	PlayerServiceTogglePlayProcedure  = "/player.v1.PlayerService/TogglePlay"
	PlayerServiceSeekProcedure        = "/player.v1.PlayerService/Seek"
	PlayerServiceSetVolumeProcedure   = "/player.v1.PlayerService/SetVolume"
	PlayerServiceSetRepeatProcedure   = "/player.v1.PlayerService/SetRepeat"
	PlayerServiceCheckAssetsProcedure = "/player.v1.PlayerService/CheckAssets"
	PlayerServiceGetHistoryProcedure  = "/player.v1.PlayerService/GetHistory"
	PlayerServiceSubscribeProcedure   = "/player.v1.PlayerService/Subscribe"
)

// IsMutating reports whether a procedure changes player state.
func IsMutating(procedure string) bool {
	switch procedure {
	case PlayerServiceGetStateProcedure,
		PlayerServiceGetPlaylistProcedure,
		PlayerServiceCheckAssetsProcedure,
		PlayerServiceGetHistoryProcedure,
		PlayerServiceSubscribeProcedure:
		return false
	}
	return strings.HasPrefix(procedure, "/"+PlayerServiceName+"/")
}

// PlayerServiceHandler is implemented by the server.
type PlayerServiceHandler interface {
	GetState(context.Context, *connect.Request[playerv1.GetStateRequest]) (*connect.Response[playerv1.StateResponse], error)
	GetPlaylist(context.Context, *connect.Request[playerv1.GetPlaylistRequest]) (*connect.Response[playerv1.GetPlaylistResponse], error)
	SelectTrack(context.Context, *connect.Request[playerv1.SelectTrackRequest]) (*connect.Response[playerv1.StateResponse], error)
	Next(context.Context, *connect.Request[playerv1.NextRequest]) (*connect.Response[playerv1.StateResponse], error)
	Previous(context.Context, *connect.Request[playerv1.PreviousRequest]) (*connect.Response[playerv1.StateResponse], error)
	Play(context.Context, *connect.Request[playerv1.PlayRequest]) (*connect.Response[playerv1.StateResponse], error)
	Pause(context.Context, *connect.Request[playerv1.PauseRequest]) (*connect.Response[playerv1.StateResponse], error)
	TogglePlay(context.Context, *connect.Request[playerv1.TogglePlayRequest]) (*connect.Response[playerv1.StateResponse], error)
	Seek(context.Context, *connect.Request[playerv1.SeekRequest]) (*connect.Response[playerv1.StateResponse], error)
	SetVolume(context.Context, *connect.Request[playerv1.SetVolumeRequest]) (*connect.Response[playerv1.StateResponse], error)
	SetRepeat(context.Context, *connect.Request[playerv1.SetRepeatRequest]) (*connect.Response[playerv1.StateResponse], error)
	CheckAssets(context.Context, *connect.Request[playerv1.CheckAssetsRequest]) (*connect.Response[playerv1.CheckAssetsResponse], error)
	GetHistory(context.Context, *connect.Request[playerv1.GetHistoryRequest]) (*connect.Response[playerv1.GetHistoryResponse], error)
	Subscribe(context.Context, *connect.Request[playerv1.SubscribeRequest], *connect.ServerStream[playerv1.Notification]) error
}

// NewPlayerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewPlayerServiceHandler(svc PlayerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(playerv1.JSONCodec{})}, opts...)
	readOnly := append([]connect.HandlerOption{connect.WithIdempotency(connect.IdempotencyNoSideEffects)}, opts...)

	handlers := map[string]http.Handler{
		PlayerServiceGetStateProcedure:    connect.NewUnaryHandler(PlayerServiceGetStateProcedure, svc.GetState, readOnly...),
		PlayerServiceGetPlaylistProcedure: connect.NewUnaryHandler(PlayerServiceGetPlaylistProcedure, svc.GetPlaylist, readOnly...),
		PlayerServiceSelectTrackProcedure: connect.NewUnaryHandler(PlayerServiceSelectTrackProcedure, svc.SelectTrack, opts...),
		PlayerServiceNextProcedure:        connect.NewUnaryHandler(PlayerServiceNextProcedure, svc.Next, opts...),
		PlayerServicePreviousProcedure:    connect.NewUnaryHandler(PlayerServicePreviousProcedure, svc.Previous, opts...),
		PlayerServicePlayProcedure:        connect.NewUnaryHandler(PlayerServicePlayProcedure, svc.Play, opts...),
		PlayerServicePauseProcedure:       connect.NewUnaryHandler(PlayerServicePauseProcedure, svc.Pause, opts...),
		PlayerServiceTogglePlayProcedure:  connect.NewUnaryHandler(PlayerServiceTogglePlayProcedure, svc.TogglePlay, opts...),
		PlayerServiceSeekProcedure:        connect.NewUnaryHandler(PlayerServiceSeekProcedure, svc.Seek, opts...),
		PlayerServiceSetVolumeProcedure:   connect.NewUnaryHandler(PlayerServiceSetVolumeProcedure, svc.SetVolume, opts...),
		PlayerServiceSetRepeatProcedure:   connect.NewUnaryHandler(PlayerServiceSetRepeatProcedure, svc.SetRepeat, opts...),
		PlayerServiceCheckAssetsProcedure: connect.NewUnaryHandler(PlayerServiceCheckAssetsProcedure, svc.CheckAssets, opts...),
		PlayerServiceGetHistoryProcedure:  connect.NewUnaryHandler(PlayerServiceGetHistoryProcedure, svc.GetHistory, readOnly...),
		PlayerServiceSubscribeProcedure:   connect.NewServerStreamHandler(PlayerServiceSubscribeProcedure, svc.Subscribe, opts...),
	}

	return "/" + PlayerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// PlayerServiceClient is a client for the player.v1.PlayerService service.
type PlayerServiceClient interface {
	GetState(context.Context, *connect.Request[playerv1.GetStateRequest]) (*connect.Response[playerv1.StateResponse], error)
	GetPlaylist(context.Context, *connect.Request[playerv1.GetPlaylistRequest]) (*connect.Response[playerv1.GetPlaylistResponse], error)
	SelectTrack(context.Context, *connect.Request[playerv1.SelectTrackRequest]) (*connect.Response[playerv1.StateResponse], error)
	Next(context.Context, *connect.Request[playerv1.NextRequest]) (*connect.Response[playerv1.StateResponse], error)
	Previous(context.Context, *connect.Request[playerv1.PreviousRequest]) (*connect.Response[playerv1.StateResponse], error)
	Play(context.Context, *connect.Request[playerv1.PlayRequest]) (*connect.Response[playerv1.StateResponse], error)
	Pause(context.Context, *connect.Request[playerv1.PauseRequest]) (*connect.Response[playerv1.StateResponse], error)
	TogglePlay(context.Context, *connect.Request[playerv1.TogglePlayRequest]) (*connect.Response[playerv1.StateResponse], error)
	Seek(context.Context, *connect.Request[playerv1.SeekRequest]) (*connect.Response[playerv1.StateResponse], error)
	SetVolume(context.Context, *connect.Request[playerv1.SetVolumeRequest]) (*connect.Response[playerv1.StateResponse], error)
	SetRepeat(context.Context, *connect.Request[playerv1.SetRepeatRequest]) (*connect.Response[playerv1.StateResponse], error)
	CheckAssets(context.Context, *connect.Request[playerv1.CheckAssetsRequest]) (*connect.Response[playerv1.CheckAssetsResponse], error)
	GetHistory(context.Context, *connect.Request[playerv1.GetHistoryRequest]) (*connect.Response[playerv1.GetHistoryResponse], error)
	Subscribe(context.Context, *connect.Request[playerv1.SubscribeRequest]) (*connect.ServerStreamForClient[playerv1.Notification], error)
}

// NewPlayerServiceClient constructs a client for the player.v1.PlayerService service.
// baseURL is the server root, e.g. http://127.0.0.1:8080.
func NewPlayerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) PlayerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(playerv1.JSONCodec{})}, opts...)

	return &playerServiceClient{
		getState:    connect.NewClient[playerv1.GetStateRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServiceGetStateProcedure, opts...),
		getPlaylist: connect.NewClient[playerv1.GetPlaylistRequest, playerv1.GetPlaylistResponse](httpClient, baseURL+PlayerServiceGetPlaylistProcedure, opts...),
		selectTrack: connect.NewClient[playerv1.SelectTrackRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServiceSelectTrackProcedure, opts...),
		next:        connect.NewClient[playerv1.NextRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServiceNextProcedure, opts...),
		previous:    connect.NewClient[playerv1.PreviousRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServicePreviousProcedure, opts...),
		play:        connect.NewClient[playerv1.PlayRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServicePlayProcedure, opts...),
		pause:       connect.NewClient[playerv1.PauseRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServicePauseProcedure, opts...),
		togglePlay:  connect.NewClient[playerv1.TogglePlayRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServiceTogglePlayProcedure, opts...),
		seek:        connect.NewClient[playerv1.SeekRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServiceSeekProcedure, opts...),
		setVolume:   connect.NewClient[playerv1.SetVolumeRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServiceSetVolumeProcedure, opts...),
		setRepeat:   connect.NewClient[playerv1.SetRepeatRequest, playerv1.StateResponse](httpClient, baseURL+PlayerServiceSetRepeatProcedure, opts...),
		checkAssets: connect.NewClient[playerv1.CheckAssetsRequest, playerv1.CheckAssetsResponse](httpClient, baseURL+PlayerServiceCheckAssetsProcedure, opts...),
		getHistory:  connect.NewClient[playerv1.GetHistoryRequest, playerv1.GetHistoryResponse](httpClient, baseURL+PlayerServiceGetHistoryProcedure, opts...),
		subscribe:   connect.NewClient[playerv1.SubscribeRequest, playerv1.Notification](httpClient, baseURL+PlayerServiceSubscribeProcedure, opts...),
	}
}

type playerServiceClient struct {
	getState    *connect.Client[playerv1.GetStateRequest, playerv1.StateResponse]
	getPlaylist *connect.Client[playerv1.GetPlaylistRequest, playerv1.GetPlaylistResponse]
	selectTrack *connect.Client[playerv1.SelectTrackRequest, playerv1.StateResponse]
	next        *connect.Client[playerv1.NextRequest, playerv1.StateResponse]
	previous    *connect.Client[playerv1.PreviousRequest, playerv1.StateResponse]
	play        *connect.Client[playerv1.PlayRequest, playerv1.StateResponse]
	pause       *connect.Client[playerv1.PauseRequest, playerv1.StateResponse]
	togglePlay  *connect.Client[playerv1.TogglePlayRequest, playerv1.StateResponse]
	seek        *connect.Client[playerv1.SeekRequest, playerv1.StateResponse]
	setVolume   *connect.Client[playerv1.SetVolumeRequest, playerv1.StateResponse]
	setRepeat   *connect.Client[playerv1.SetRepeatRequest, playerv1.StateResponse]
	checkAssets *connect.Client[playerv1.CheckAssetsRequest, playerv1.CheckAssetsResponse]
	getHistory  *connect.Client[playerv1.GetHistoryRequest, playerv1.GetHistoryResponse]
	subscribe   *connect.Client[playerv1.SubscribeRequest, playerv1.Notification]
}

func (c *playerServiceClient) GetState(ctx context.Context, req *connect.Request[playerv1.GetStateRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.getState.CallUnary(ctx, req)
}

func (c *playerServiceClient) GetPlaylist(ctx context.Context, req *connect.Request[playerv1.GetPlaylistRequest]) (*connect.Response[playerv1.GetPlaylistResponse], error) {
	return c.getPlaylist.CallUnary(ctx, req)
}

func (c *playerServiceClient) SelectTrack(ctx context.Context, req *connect.Request[playerv1.SelectTrackRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.selectTrack.CallUnary(ctx, req)
}

func (c *playerServiceClient) Next(ctx context.Context, req *connect.Request[playerv1.NextRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.next.CallUnary(ctx, req)
}

func (c *playerServiceClient) Previous(ctx context.Context, req *connect.Request[playerv1.PreviousRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.previous.CallUnary(ctx, req)
}

func (c *playerServiceClient) Play(ctx context.Context, req *connect.Request[playerv1.PlayRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.play.CallUnary(ctx, req)
}

func (c *playerServiceClient) Pause(ctx context.Context, req *connect.Request[playerv1.PauseRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.pause.CallUnary(ctx, req)
}

func (c *playerServiceClient) TogglePlay(ctx context.Context, req *connect.Request[playerv1.TogglePlayRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.togglePlay.CallUnary(ctx, req)
}

func (c *playerServiceClient) Seek(ctx context.Context, req *connect.Request[playerv1.SeekRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.seek.CallUnary(ctx, req)
}

func (c *playerServiceClient) SetVolume(ctx context.Context, req *connect.Request[playerv1.SetVolumeRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.setVolume.CallUnary(ctx, req)
}

func (c *playerServiceClient) SetRepeat(ctx context.Context, req *connect.Request[playerv1.SetRepeatRequest]) (*connect.Response[playerv1.StateResponse], error) {
	return c.setRepeat.CallUnary(ctx, req)
}

func (c *playerServiceClient) CheckAssets(ctx context.Context, req *connect.Request[playerv1.CheckAssetsRequest]) (*connect.Response[playerv1.CheckAssetsResponse], error) {
	return c.checkAssets.CallUnary(ctx, req)
}

func (c *playerServiceClient) GetHistory(ctx context.Context, req *connect.Request[playerv1.GetHistoryRequest]) (*connect.Response[playerv1.GetHistoryResponse], error) {
	return c.getHistory.CallUnary(ctx, req)
}

func (c *playerServiceClient) Subscribe(ctx context.Context, req *connect.Request[playerv1.SubscribeRequest]) (*connect.ServerStreamForClient[playerv1.Notification], error) {
	return c.subscribe.CallServerStream(ctx, req)
}
