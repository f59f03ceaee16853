package auth

import (
	"github.com/spf13/cobra"

	"vidshare/cmd/client/cmd/types"
)

var WhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Показать текущую сессию",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		result, err := app.Restore(cmd.Context(), "")
		if err != nil {
			return err
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(out, map[string]any{
				"authenticated": result.Authenticated,
				"session":       result.Session,
			})
		}

		if !result.Authenticated {
			types.Warn(out, "Вход не выполнен. Используйте: vidshare auth login")
			return nil
		}

		sess := result.Session
		types.Info(out, "Пользователь: %s", sess.Username)
		types.Info(out, "Номер студента: %s", sess.StudentID)
		types.Info(out, "Роль: %s", sess.Role)
		if sess.UserID != "" {
			types.Info(out, "ID: %s", sess.UserID)
		}
		return nil
	},
}
