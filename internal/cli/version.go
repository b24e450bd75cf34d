package cli

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/openmusicplayer/videoinfo/internal/config"
	"github.com/openmusicplayer/videoinfo/internal/logger"
	"github.com/openmusicplayer/videoinfo/internal/ytdlp"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "videoinfo v%s %s/%s\n", cfg.Version, runtime.GOOS, runtime.GOARCH)

			yt, err := ytdlp.New(&ytdlp.Config{Path: cfg.YtdlpPath, Logger: logger.Discard()})
			if err != nil {
				fmt.Fprintf(out, "yt-dlp not found (%s)\n", cfg.YtdlpPath)
				return nil
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			v, err := yt.Version(ctx)
			if err != nil {
				fmt.Fprintf(out, "yt-dlp %s: %v\n", yt.Path(), err)
				return nil
			}
			fmt.Fprintf(out, "yt-dlp %s (%s)\n", v, yt.Path())
			return nil
		},
	}
}
