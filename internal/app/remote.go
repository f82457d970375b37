package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/five82/showreel/internal/remote"
)

const remoteUsage = "usage: showreel -remote ADDR [status|playlist|play|mute|seek FRACTION|seek SECONDSs|seek +/-SECONDS|track N|health]"

// Remote runs one command against a showreel serving its API on addr and
// prints the result to out. Track numbers are one-based, as in the TUI.
func Remote(ctx context.Context, addr string, args []string, out io.Writer) error {
	client, err := remote.NewClient(addr)
	if err != nil {
		return err
	}
	return runRemote(ctx, client, args, out)
}

func runRemote(ctx context.Context, c remote.Controller, args []string, out io.Writer) error {
	command := "status"
	if len(args) > 0 {
		command = strings.ToLower(args[0])
		args = args[1:]
	}

	var (
		status *remote.StatusResponse
		err    error
	)
	switch command {
	case "status":
		status, err = c.FetchStatus(ctx)
	case "play", "pause", "toggle":
		status, err = c.TogglePlay(ctx)
	case "mute", "unmute":
		status, err = c.ToggleMute(ctx)
	case "seek":
		if len(args) != 1 {
			return fmt.Errorf("seek needs one argument\n%s", remoteUsage)
		}
		status, err = remoteSeek(ctx, c, args[0])
	case "track":
		if len(args) != 1 {
			return fmt.Errorf("track needs a number\n%s", remoteUsage)
		}
		n, convErr := strconv.Atoi(args[0])
		if convErr != nil || n < 1 {
			return fmt.Errorf("invalid track number %q", args[0])
		}
		status, err = c.SelectTrack(ctx, n-1)
	case "playlist":
		return printPlaylist(ctx, c, out)
	case "health":
		if err := c.Health(ctx); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, "ok")
		return err
	default:
		return fmt.Errorf("unknown command %q\n%s", command, remoteUsage)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, formatRemoteStatus(status))
	return err
}

// remoteSeek treats a signed argument as a relative offset in seconds, an
// unsigned one with an "s" suffix as a position in seconds, and a bare
// unsigned one as a fraction of the duration.
func remoteSeek(ctx context.Context, c remote.Controller, arg string) (*remote.StatusResponse, error) {
	num, seconds := strings.CutSuffix(arg, "s")
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid seek %q", arg)
	}
	switch {
	case strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-"):
		return c.SeekBy(ctx, v)
	case seconds:
		status, err := c.FetchStatus(ctx)
		if err != nil {
			return nil, err
		}
		if status.State.Duration <= 0 {
			return nil, fmt.Errorf("cannot seek to %s: duration unknown", arg)
		}
		return c.Seek(ctx, min(v/status.State.Duration, 1))
	case v > 1:
		return nil, fmt.Errorf("seek fraction %q out of range; use %ss for seconds", arg, arg)
	default:
		return c.Seek(ctx, v)
	}
}

func printPlaylist(ctx context.Context, c remote.Controller, out io.Writer) error {
	pl, err := c.FetchPlaylist(ctx)
	if err != nil {
		return err
	}
	if pl.Title != "" {
		if _, err := fmt.Fprintln(out, pl.Title); err != nil {
			return err
		}
	}
	for _, t := range pl.Tracks {
		marker := " "
		if t.Active {
			marker = "*"
		}
		if _, err := fmt.Fprintf(out, "%s %d. %s (%s)\n", marker, t.Index+1, t.Title, t.Source); err != nil {
			return err
		}
	}
	return nil
}

func formatRemoteStatus(s *remote.StatusResponse) string {
	line := fmt.Sprintf("%s %d. %s  %s / %s (%.0f%%)",
		s.Label(), s.Track.Index+1, s.Track.Title, s.Elapsed, s.Total, s.ProgressPercent)
	if s.State.Muted {
		line += " muted"
	}
	if s.Error != "" {
		line += " error: " + s.Error
	}
	return line
}
