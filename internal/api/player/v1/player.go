// Package playerv1 defines the messages of the player.v1 RPC API.
package playerv1

// NotificationType identifies what a notification reports.
type NotificationType string

const (
	NotificationTypeInitialState    NotificationType = "initial_state"
	NotificationTypeTrackChanged    NotificationType = "track_changed"
	NotificationTypeMetadataLoaded  NotificationType = "metadata_loaded"
	NotificationTypeStateChanged    NotificationType = "state_changed"
	NotificationTypePositionChanged NotificationType = "position_changed"
	NotificationTypeVolumeChanged   NotificationType = "volume_changed"
	NotificationTypeRepeatChanged   NotificationType = "repeat_changed"
	NotificationTypeErrored         NotificationType = "errored"
	NotificationTypeEnded           NotificationType = "ended"
	NotificationTypeSessionEnded    NotificationType = "session_ended"
)

// Track is a playlist entry.
type Track struct {
	Index     int32  `json:"index"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	AssetPath string `json:"assetPath"`
}

// PlayerState is the observable player state plus its derived labels.
type PlayerState struct {
	Status          string  `json:"status"`
	Index           int32   `json:"index"`
	TrackCount      int32   `json:"trackCount"`
	Track           *Track  `json:"track,omitempty"`
	PositionMs      int64   `json:"positionMs"`
	DurationMs      int64   `json:"durationMs"`
	DurationKnown   bool    `json:"durationKnown"`
	Volume          float64 `json:"volume"`
	Repeat          string  `json:"repeat"`
	Blocked         bool    `json:"blocked,omitempty"`
	LastError       string  `json:"lastError,omitempty"`
	Generation      uint64  `json:"generation"`
	ProgressPercent float64 `json:"progressPercent"`
	ActiveIndex     int32   `json:"activeIndex"`
	TransportLabel  string  `json:"transportLabel"`
	VolumeLabel     string  `json:"volumeLabel"`
}

// Notification is pushed to subscribers.
type Notification struct {
	Type       NotificationType `json:"type"`
	SequenceNo uint64           `json:"sequenceNo"`
	State      *PlayerState     `json:"state,omitempty"`
}

type GetStateRequest struct{}

type GetPlaylistRequest struct{}

type GetPlaylistResponse struct {
	Name   string   `json:"name"`
	Tracks []*Track `json:"tracks"`
}

type SelectTrackRequest struct {
	Index int32 `json:"index"`
}

type NextRequest struct{}

type PreviousRequest struct{}

type PlayRequest struct{}

type PauseRequest struct{}

type TogglePlayRequest struct{}

type SeekRequest struct {
	PositionMs int64 `json:"positionMs"`
}

type SetVolumeRequest struct {
	Volume float64 `json:"volume"`
}

type SetRepeatRequest struct {
	Repeat string `json:"repeat"`
}

// StateResponse is returned by every command with the state after it ran.
type StateResponse struct {
	State *PlayerState `json:"state"`
}

type CheckAssetsRequest struct{}

type AssetCheckResult struct {
	Index   int32  `json:"index"`
	TrackID string `json:"trackId"`
	Title   string `json:"title"`
	Passed  bool   `json:"passed"`
	Code    string `json:"code,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type CheckAssetsResponse struct {
	Passed  int32               `json:"passed"`
	Failed  int32               `json:"failed"`
	Results []*AssetCheckResult `json:"results"`
}

type GetHistoryRequest struct {
	Limit int32 `json:"limit"`
}

type HistoryEntry struct {
	ID         string `json:"id"`
	TrackID    string `json:"trackId"`
	Title      string `json:"title"`
	Outcome    string `json:"outcome"`
	PositionMs int64  `json:"positionMs"`
	PlayedAt   string `json:"playedAt"` // RFC 3339
}

type GetHistoryResponse struct {
	Entries []*HistoryEntry `json:"entries"`
}

type SubscribeRequest struct{}
