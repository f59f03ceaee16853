package video

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidshare/cmd/client/cmd/types"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список моих видео",
	Long:  `Видео текущего пользователя, новые первыми.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		videos, err := app.MyVideos(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка видео: %w", err)
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(cmd.OutOrStdout(), JSONRecords(videos))
		}
		return PrintTable(cmd.OutOrStdout(), videos)
	},
}
