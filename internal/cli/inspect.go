package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/openmusicplayer/videoinfo/internal/config"
	apperrors "github.com/openmusicplayer/videoinfo/internal/errors"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <url>",
		Short: "Run one lookup and print the JSON result",
		Long: `Run the same lookup POST /api/get_video_info performs and print the
response body to stdout. Logs go to stderr. Exits non-zero when the lookup fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			info, err := a.service.GetVideoInfo(cmd.Context(), args[0])
			if err != nil {
				appErr := apperrors.AsAppError(err)
				if encErr := enc.Encode(apperrors.ErrorResponse{Error: appErr.Code, Message: appErr.Message}); encErr != nil {
					return encErr
				}
				return appErr
			}
			return enc.Encode(info)
		},
	}
}
