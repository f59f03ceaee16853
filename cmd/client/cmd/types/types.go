package types

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vidshare/internal/app/client"
)

type contextKey string

const (
	// ClientAppKey - ключ *client.App в контексте команды
	ClientAppKey contextKey = "app"
	// JSONOutputKey - ключ флага --json в контексте команды
	JSONOutputKey contextKey = "json"
)

// App достаёт приложение из контекста команды
func App(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("приложение не инициализировано")
	}
	return app, nil
}

// JSONOutput сообщает, запрошен ли вывод в JSON
func JSONOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Context().Value(JSONOutputKey).(bool)
	return v
}

// PrintJSON печатает значение с отступами
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// Success печатает строку об успешном действии
func Success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, "✓ "+format+"\n", args...)
}

// Warn печатает предупреждение
func Warn(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, "⚠️  "+format+"\n", args...)
}

// Info печатает справочную строку
func Info(w io.Writer, format string, args ...any) {
	infoColor.Fprintf(w, format+"\n", args...)
}
