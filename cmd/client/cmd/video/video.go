package video

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"vidshare/internal/domain/video"
)

// VideoCmd - родительская команда для операций с видео пользователя
var VideoCmd = &cobra.Command{
	Use:   "video",
	Short: "Мои видео",
	Long:  `Просмотр и загрузка видео текущего пользователя.`,
}

func init() {
	VideoCmd.AddCommand(ListCmd)
	VideoCmd.AddCommand(UploadCmd)
	VideoCmd.AddCommand(RegisterCmd)
}

// PrintTable печатает видео таблицей
func PrintTable(w io.Writer, videos []video.Record) error {
	if len(videos) == 0 {
		fmt.Fprintln(w, "Видео пока нет")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tНАЗВАНИЕ\tЗАГРУЖЕНО\tURL")
	for _, v := range videos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			v.ID,
			v.Title,
			v.UploadDate.Local().Format(time.DateTime),
			v.URL,
		)
	}
	return tw.Flush()
}

// JSONRecords добавляет в вывод идентификатор, который не сериализуется в хранилище
func JSONRecords(videos []video.Record) []map[string]any {
	out := make([]map[string]any, 0, len(videos))
	for _, v := range videos {
		out = append(out, map[string]any{
			"id":         v.ID,
			"userId":     v.UserID,
			"username":   v.Username,
			"studentId":  v.StudentID,
			"title":      v.Title,
			"url":        v.URL,
			"uploadDate": v.UploadDate,
		})
	}
	return out
}
