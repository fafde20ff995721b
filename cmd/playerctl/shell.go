package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

const shellHelp = `Commands:
  state | playlist | history [n] | check
  select <index> | next | prev
  play | pause | toggle
  seek <seconds> | volume <percent> | repeat <none|one|all>
  help | quit`

// shell runs an interactive loop. Command errors are printed, not fatal.
func (c *controller) shell(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "player> ",
		AutoComplete: readline.NewPrefixCompleter(
			readline.PcItem("state"),
			readline.PcItem("playlist"),
			readline.PcItem("history"),
			readline.PcItem("check"),
			readline.PcItem("select"),
			readline.PcItem("next"),
			readline.PcItem("prev"),
			readline.PcItem("play"),
			readline.PcItem("pause"),
			readline.PcItem("toggle"),
			readline.PcItem("seek"),
			readline.PcItem("volume"),
			readline.PcItem("repeat",
				readline.PcItem("none"),
				readline.PcItem("one"),
				readline.PcItem("all"),
			),
			readline.PcItem("help"),
			readline.PcItem("quit"),
		),
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println(shellHelp)
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := c.dispatch(ctx, fields[0], fields[1:]); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *controller) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "state", "status":
		return c.state(ctx)
	case "playlist", "ls":
		return c.playlist(ctx)
	case "history":
		limit := int64(20)
		if len(args) > 0 {
			n, err := strconv.ParseInt(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid limit %q", args[0])
			}
			limit = n
		}
		return c.history(ctx, int32(limit))
	case "check":
		return c.checkAssets(ctx)
	case "select":
		if len(args) != 1 {
			return fmt.Errorf("usage: select <index>")
		}
		n, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid index %q", args[0])
		}
		return c.selectTrack(ctx, int32(n))
	case "next":
		return c.next(ctx)
	case "prev", "previous":
		return c.previous(ctx)
	case "play":
		return c.play(ctx)
	case "pause":
		return c.pause(ctx)
	case "toggle", "t":
		return c.toggle(ctx)
	case "seek":
		if len(args) != 1 {
			return fmt.Errorf("usage: seek <seconds>")
		}
		sec, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid position %q", args[0])
		}
		return c.seek(ctx, sec)
	case "volume", "vol":
		if len(args) != 1 {
			return fmt.Errorf("usage: volume <percent>")
		}
		pct, err := strconv.Atoi(strings.TrimSuffix(args[0], "%"))
		if err != nil {
			return fmt.Errorf("invalid volume %q", args[0])
		}
		return c.volume(ctx, pct)
	case "repeat":
		if len(args) != 1 {
			return fmt.Errorf("usage: repeat <none|one|all>")
		}
		return c.repeat(ctx, args[0])
	case "help", "?":
		fmt.Println(shellHelp)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}
