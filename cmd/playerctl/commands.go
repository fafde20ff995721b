package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/api/player/v1/playerv1connect"
)

type controller struct {
	client playerv1connect.PlayerServiceClient
}

func (c *controller) state(ctx context.Context) error {
	resp, err := c.client.GetState(ctx, connect.NewRequest(&playerv1.GetStateRequest{}))
	if err != nil {
		return err
	}
	printState(resp.Msg.State)
	return nil
}

func (c *controller) playlist(ctx context.Context) error {
	resp, err := c.client.GetPlaylist(ctx, connect.NewRequest(&playerv1.GetPlaylistRequest{}))
	if err != nil {
		return err
	}
	state, err := c.client.GetState(ctx, connect.NewRequest(&playerv1.GetStateRequest{}))
	if err != nil {
		return err
	}

	fmt.Printf("\n=== %s (%d tracks) ===\n", resp.Msg.Name, len(resp.Msg.Tracks))
	for _, t := range resp.Msg.Tracks {
		marker := " "
		if t.Index == state.Msg.State.ActiveIndex {
			marker = "*"
		}
		fmt.Printf("%s %3d  %-40s %s\n", marker, t.Index, t.Title, t.AssetPath)
	}
	fmt.Println()
	return nil
}

func (c *controller) selectTrack(ctx context.Context, index int32) error {
	return c.command(c.client.SelectTrack(ctx, connect.NewRequest(&playerv1.SelectTrackRequest{Index: index})))
}

func (c *controller) next(ctx context.Context) error {
	return c.command(c.client.Next(ctx, connect.NewRequest(&playerv1.NextRequest{})))
}

func (c *controller) previous(ctx context.Context) error {
	return c.command(c.client.Previous(ctx, connect.NewRequest(&playerv1.PreviousRequest{})))
}

func (c *controller) play(ctx context.Context) error {
	return c.command(c.client.Play(ctx, connect.NewRequest(&playerv1.PlayRequest{})))
}

func (c *controller) pause(ctx context.Context) error {
	return c.command(c.client.Pause(ctx, connect.NewRequest(&playerv1.PauseRequest{})))
}

func (c *controller) toggle(ctx context.Context) error {
	return c.command(c.client.TogglePlay(ctx, connect.NewRequest(&playerv1.TogglePlayRequest{})))
}

func (c *controller) seek(ctx context.Context, seconds float64) error {
	ms := int64(seconds * 1000)
	return c.command(c.client.Seek(ctx, connect.NewRequest(&playerv1.SeekRequest{PositionMs: ms})))
}

func (c *controller) volume(ctx context.Context, percent int) error {
	v := float64(percent) / 100
	return c.command(c.client.SetVolume(ctx, connect.NewRequest(&playerv1.SetVolumeRequest{Volume: v})))
}

func (c *controller) repeat(ctx context.Context, mode string) error {
	return c.command(c.client.SetRepeat(ctx, connect.NewRequest(&playerv1.SetRepeatRequest{Repeat: mode})))
}

func (c *controller) checkAssets(ctx context.Context) error {
	resp, err := c.client.CheckAssets(ctx, connect.NewRequest(&playerv1.CheckAssetsRequest{}))
	if err != nil {
		return err
	}

	fmt.Println("\n=== ASSET CHECK ===")
	for _, r := range resp.Msg.Results {
		status := "ok"
		if !r.Passed {
			status = fmt.Sprintf("FAIL %s: %s", r.Code, r.Detail)
		}
		fmt.Printf("  %3d  %-40s %s\n", r.Index, r.Title, status)
	}
	fmt.Printf("\nPassed: %d, Failed: %d\n\n", resp.Msg.Passed, resp.Msg.Failed)
	return nil
}

func (c *controller) history(ctx context.Context, limit int32) error {
	resp, err := c.client.GetHistory(ctx, connect.NewRequest(&playerv1.GetHistoryRequest{Limit: limit}))
	if err != nil {
		return err
	}
	if len(resp.Msg.Entries) == 0 {
		fmt.Println("No plays recorded.")
		return nil
	}

	fmt.Println("\n=== RECENT PLAYS ===")
	for _, e := range resp.Msg.Entries {
		playedAt := e.PlayedAt
		if t, err := time.Parse(time.RFC3339, e.PlayedAt); err == nil {
			playedAt = t.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  %s  %-8s %-40s at %s\n", playedAt, e.Outcome, e.Title, formatMs(e.PositionMs))
	}
	fmt.Println()
	return nil
}

// watch prints notifications until ctx is cancelled or the server ends the stream.
func (c *controller) watch(ctx context.Context) error {
	stream, err := c.client.Subscribe(ctx, connect.NewRequest(&playerv1.SubscribeRequest{}))
	if err != nil {
		return err
	}
	defer stream.Close()

	fmt.Println("Subscribed to notifications. Press Ctrl+C to exit.")

	for stream.Receive() {
		printNotification(stream.Msg())
	}

	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	return nil
}

func (c *controller) command(resp *connect.Response[playerv1.StateResponse], err error) error {
	if err != nil {
		return err
	}
	printState(resp.Msg.State)
	return nil
}

func printState(s *playerv1.PlayerState) {
	fmt.Println()
	if s.Track != nil {
		fmt.Printf("Track:    [%d/%d] %s\n", s.Index+1, s.TrackCount, s.Track.Title)
	}
	status := strings.ToUpper(s.Status)
	if s.Blocked {
		status += " (blocked: send play to start)"
	}
	if s.LastError != "" {
		status += " (" + s.LastError + ")"
	}
	fmt.Printf("Status:   %s\n", status)

	duration := "--:--"
	if s.DurationKnown {
		duration = formatMs(s.DurationMs)
	}
	fmt.Printf("Position: %s / %s  %s\n", formatMs(s.PositionMs), duration, progressBar(s.ProgressPercent, 30))
	fmt.Printf("Volume:   %s\n", s.VolumeLabel)
	fmt.Printf("Repeat:   %s\n", s.Repeat)
	fmt.Printf("Button:   [%s]\n", s.TransportLabel)
	fmt.Println()
}

func printNotification(n *playerv1.Notification) {
	if n.State == nil {
		fmt.Printf("[%d] %s\n", n.SequenceNo, n.Type)
		return
	}
	s := n.State
	title := ""
	if s.Track != nil {
		title = s.Track.Title
	}

	switch n.Type {
	case playerv1.NotificationTypePositionChanged:
		fmt.Printf("[%d] %-16s %s %s\n", n.SequenceNo, n.Type, formatMs(s.PositionMs), progressBar(s.ProgressPercent, 20))
	case playerv1.NotificationTypeVolumeChanged:
		fmt.Printf("[%d] %-16s %s\n", n.SequenceNo, n.Type, s.VolumeLabel)
	case playerv1.NotificationTypeRepeatChanged:
		fmt.Printf("[%d] %-16s %s\n", n.SequenceNo, n.Type, s.Repeat)
	case playerv1.NotificationTypeErrored:
		fmt.Printf("[%d] %-16s %s: %s\n", n.SequenceNo, n.Type, title, s.LastError)
	default:
		fmt.Printf("[%d] %-16s %s [%d] %s\n", n.SequenceNo, n.Type, s.Status, s.Index, title)
	}
}

func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func progressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}
