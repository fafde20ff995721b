// Package main provides the player control CLI.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	apiconnect "github.com/osa030/cornerpocket/internal/api/connect"
	"github.com/osa030/cornerpocket/internal/api/player/v1/playerv1connect"
)

var (
	app    = kingpin.New("playerctl", "cornerpocket player control client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Control token (or set CONTROL_TOKEN env)").Envar("CONTROL_TOKEN").String()

	stateCmd    = app.Command("state", "Show the player state").Alias("status")
	playlistCmd = app.Command("playlist", "List the playlist").Alias("ls")

	selectCmd   = app.Command("select", "Select a track by index")
	selectIndex = selectCmd.Arg("index", "Track index (0-based)").Required().Int32()

	nextCmd   = app.Command("next", "Go to the next track")
	prevCmd   = app.Command("prev", "Go to the previous track").Alias("previous")
	playCmd   = app.Command("play", "Start playback")
	pauseCmd  = app.Command("pause", "Pause playback")
	toggleCmd = app.Command("toggle", "Toggle play/pause")

	seekCmd     = app.Command("seek", "Seek to a position")
	seekSeconds = seekCmd.Arg("seconds", "Position in seconds").Required().Float64()

	volumeCmd     = app.Command("volume", "Set the volume")
	volumePercent = volumeCmd.Arg("percent", "Volume in percent (0-100)").Required().Int()

	repeatCmd  = app.Command("repeat", "Set the repeat mode")
	repeatMode = repeatCmd.Arg("mode", "none, one or all").Required().Enum("none", "one", "all")

	checkCmd = app.Command("check-assets", "Check every playlist asset")

	historyCmd   = app.Command("history", "Show recent plays")
	historyLimit = historyCmd.Flag("limit", "Number of entries").Short('n').Default("20").Int32()

	watchCmd = app.Command("watch", "Follow player notifications")
	shellCmd = app.Command("shell", "Interactive control shell")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Create client
	client := playerv1connect.NewPlayerServiceClient(
		http.DefaultClient,
		*server,
		connect.WithInterceptors(apiconnect.NewControlTokenClientInterceptor(*token)),
	)
	c := &controller{client: client}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case stateCmd.FullCommand():
		err = c.state(ctx)
	case playlistCmd.FullCommand():
		err = c.playlist(ctx)
	case selectCmd.FullCommand():
		err = c.selectTrack(ctx, *selectIndex)
	case nextCmd.FullCommand():
		err = c.next(ctx)
	case prevCmd.FullCommand():
		err = c.previous(ctx)
	case playCmd.FullCommand():
		err = c.play(ctx)
	case pauseCmd.FullCommand():
		err = c.pause(ctx)
	case toggleCmd.FullCommand():
		err = c.toggle(ctx)
	case seekCmd.FullCommand():
		err = c.seek(ctx, *seekSeconds)
	case volumeCmd.FullCommand():
		err = c.volume(ctx, *volumePercent)
	case repeatCmd.FullCommand():
		err = c.repeat(ctx, *repeatMode)
	case checkCmd.FullCommand():
		err = c.checkAssets(ctx)
	case historyCmd.FullCommand():
		err = c.history(ctx, *historyLimit)
	case watchCmd.FullCommand():
		err = c.watch(ctx)
	case shellCmd.FullCommand():
		err = c.shell(ctx)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
