package video

import (
	"fmt"

	"github.com/spf13/cobra"

	"vidshare/cmd/client/cmd/types"
	"vidshare/internal/domain/video"
)

var (
	registerTitle string
	registerURL   string
)

// RegisterCmd регистрирует уже загруженный файл, если после загрузки регистрация не удалась
var RegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать загруженный файл",
	Long:  `Создаёт запись о видео для файла, который уже лежит по указанному адресу.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		rec, err := app.RetryRegistration(cmd.Context(), registerTitle, registerURL)
		if err != nil {
			return fmt.Errorf("ошибка регистрации видео: %w", err)
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(cmd.OutOrStdout(), JSONRecords([]video.Record{rec})[0])
		}
		types.Success(cmd.OutOrStdout(), "Видео «%s» зарегистрировано", rec.Title)
		return nil
	},
}

func init() {
	RegisterCmd.Flags().StringVarP(&registerTitle, "title", "t", "", "название видео")
	RegisterCmd.Flags().StringVar(&registerURL, "url", "", "адрес загруженного файла")
	_ = RegisterCmd.MarkFlagRequired("title")
	_ = RegisterCmd.MarkFlagRequired("url")
}
