// cmd/client/cmd/auth/login.go
package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vidshare/cmd/client/cmd/types"
	"vidshare/internal/domain/session"
	"vidshare/internal/domain/user"
)

var (
	username  string
	studentID string
)

var LoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Войти в VidShare",
	Long: `Вход по имени пользователя, номеру студента (4 символа) и паролю.

Если пары имя + номер студента ещё нет, учётная запись создаётся автоматически.
Сессия сохраняется локально до выполнения auth logout.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := types.App(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		in := bufio.NewReader(cmd.InOrStdin())

		if username == "" {
			username = prompt(out, in, "Имя пользователя: ")
		}
		if studentID == "" {
			studentID = prompt(out, in, "Номер студента: ")
		}

		password, err := readPassword(out, in)
		if err != nil {
			return fmt.Errorf("ошибка чтения пароля: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		result, err := app.Login(ctx, user.Credentials{
			Username:  username,
			StudentID: studentID,
			Password:  password,
		})
		switch {
		case err == nil:
		case errors.Is(err, session.ErrValidation):
			return fmt.Errorf("проверьте введённые данные: %w", err)
		case errors.Is(err, session.ErrInvalidCredentials):
			return fmt.Errorf("неверный пароль")
		default:
			return fmt.Errorf("ошибка входа: %w", err)
		}

		if types.JSONOutput(cmd) {
			return types.PrintJSON(out, map[string]any{
				"session": result.Session,
				"created": result.Created,
				"next":    result.Next,
			})
		}

		if result.Created {
			types.Success(out, "Учётная запись %s создана", result.Session.Username)
			time.Sleep(result.NotifyDelay)
		}

		if result.Session.IsAdmin() {
			types.Success(out, "Вход выполнен как администратор")
			types.Info(out, "Доступные команды: admin users, admin videos")
		} else {
			types.Success(out, "Вход выполнен: %s (%s)", result.Session.Username, result.Session.StudentID)
			types.Info(out, "Доступные команды: video list, video upload")
		}

		return nil
	},
}

func prompt(out io.Writer, in *bufio.Reader, label string) string {
	fmt.Fprint(out, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func readPassword(out io.Writer, in *bufio.Reader) (string, error) {
	fmt.Fprint(out, "Пароль: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	// Ввод не из терминала: пароль - строка целиком без перевода строки
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	LoginCmd.Flags().StringVarP(&username, "username", "u", "", "имя пользователя")
	LoginCmd.Flags().StringVarP(&studentID, "student-id", "s", "", "номер студента")
}
