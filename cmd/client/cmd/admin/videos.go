package admin

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidshare/cmd/client/cmd/types"
	"vidshare/cmd/client/cmd/video"
	"vidshare/internal/app/client"
)

var userID string

var VideosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Видео пользователя",
	Long:  `Видео выбранного пользователя. Без --user показываются видео первого пользователя в списке.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		selected, videos, err := app.UserVideos(cmd.Context(), userID)
		if errors.Is(err, client.ErrNoUsers) {
			fmt.Fprintln(out, "Пользователей пока нет")
			return nil
		}
		if err != nil {
			return fmt.Errorf("ошибка получения видео: %w", err)
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(out, map[string]any{
				"user": map[string]string{
					"id":        selected.ID,
					"username":  selected.Username,
					"studentId": selected.StudentID,
				},
				"videos": video.JSONRecords(videos),
			})
		}

		types.Info(out, "Пользователь: %s (%s)", selected.Username, selected.StudentID)
		return video.PrintTable(out, videos)
	},
}

func init() {
	VideosCmd.Flags().StringVar(&userID, "user", "", "ID пользователя")
}
