package admin

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"vidshare/cmd/client/cmd/types"
)

var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "Список пользователей",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		users, err := app.Users(cmd.Context())
		if err != nil {
			return fmt.Errorf("ошибка получения списка пользователей: %w", err)
		}

		out := cmd.OutOrStdout()
		if types.JSONOutput(cmd) {
			list := make([]map[string]string, 0, len(users))
			for _, u := range users {
				list = append(list, map[string]string{
					"id":        u.ID,
					"username":  u.Username,
					"studentId": u.StudentID,
				})
			}
			return types.PrintJSON(out, list)
		}

		if len(users) == 0 {
			fmt.Fprintln(out, "Пользователей пока нет")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tИМЯ\tНОМЕР СТУДЕНТА")
		for _, u := range users {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Username, u.StudentID)
		}
		return tw.Flush()
	},
}
