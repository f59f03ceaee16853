package admin

import (
	"github.com/spf13/cobra"
)

// AdminCmd - команды администратора
var AdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Просмотр пользователей и их видео",
	Long:  `Команды доступны после входа под учётной записью администратора.`,
}

func init() {
	AdminCmd.AddCommand(UsersCmd)
	AdminCmd.AddCommand(VideosCmd)
}
