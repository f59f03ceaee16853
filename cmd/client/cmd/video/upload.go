package video

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"vidshare/cmd/client/cmd/types"
	"vidshare/internal/app/client"
	"vidshare/internal/domain/upload"
	"vidshare/internal/domain/video"
)

const progressWidth = 30

var uploadTitle string

var UploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Загрузить видео",
	Long: `Загружает видеофайл и регистрирует его в списке видео.

Название по умолчанию - имя файла без расширения. Ctrl+C отменяет загрузку.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		progressOut := cmd.ErrOrStderr()
		quiet := types.JSONOutput(cmd)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		transfer, err := app.StartUpload(ctx, client.UploadRequest{
			Path:  args[0],
			Title: uploadTitle,
			OnProgress: func(percent int) {
				if !quiet {
					drawProgress(progressOut, percent)
				}
			},
		})
		if err != nil {
			return uploadError(err)
		}

		rec, err := transfer.Wait()
		if !quiet {
			fmt.Fprintln(progressOut)
		}
		if err != nil {
			var regErr *upload.RegistrationError
			if errors.As(err, &regErr) {
				types.Warn(out, "Файл загружен (%s), но видео не зарегистрировано", regErr.URL)
				types.Info(out, "Повторить регистрацию: vidshare video register --title %q --url %q", regErr.Title, regErr.URL)
			}
			return uploadError(err)
		}

		if quiet {
			return types.PrintJSON(out, JSONRecords([]video.Record{rec})[0])
		}
		types.Success(out, "Видео «%s» загружено: %s", rec.Title, rec.URL)
		return nil
	},
}

func drawProgress(w io.Writer, percent int) {
	filled := percent * progressWidth / 100
	fmt.Fprintf(w, "\r[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat(".", progressWidth-filled), percent)
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, upload.ErrCanceled):
		return fmt.Errorf("загрузка отменена")
	case errors.Is(err, upload.ErrBusy):
		return fmt.Errorf("загрузка уже идёт")
	case errors.Is(err, upload.ErrValidation):
		return fmt.Errorf("файл не подходит: %w", err)
	case errors.Is(err, upload.ErrTimeout):
		return fmt.Errorf("превышено время загрузки: %w", err)
	case errors.Is(err, client.ErrUploadNotConfigured):
		return fmt.Errorf("не задан адрес загрузки (UPLOAD_URL или S3_BUCKET)")
	default:
		return fmt.Errorf("ошибка загрузки: %w", err)
	}
}

func init() {
	UploadCmd.Flags().StringVarP(&uploadTitle, "title", "t", "", "название видео")
}
