// cmd/client/cmd/root.go
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"vidshare/cmd/client/cmd/admin"
	"vidshare/cmd/client/cmd/auth"
	"vidshare/cmd/client/cmd/types"
	"vidshare/cmd/client/cmd/video"
	"vidshare/internal/app/client"
	"vidshare/internal/app/client/config"
	"vidshare/internal/utils/logger"
)

var (
	cfgFile    string
	debug      bool
	jsonOutput bool
	storeURL   string
)

var rootCmd = &cobra.Command{
	Use:   "vidshare",
	Short: "VidShare - клиент для обмена видео",
	Long: `VidShare - клиент учебного видеосервиса.

Пользователь входит по имени, номеру студента и паролю (при первом входе
учётная запись создаётся), загружает видео и смотрит свои записи.
Администратор просматривает пользователей и их видео.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: closeApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	// Переопределяем настройки из флагов командной строки
	if storeURL != "" {
		cfg.Store.URL = storeURL
	}

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	var log *slog.Logger
	if cfg.IsLocal() && !debug {
		log = logger.New(cfg.Env)
	} else {
		log = logger.NewWithLevel(cfg.Env, level)
	}

	app, err := client.New(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("ошибка инициализации приложения: %w", err)
	}

	ctx := context.WithValue(cmd.Context(), types.ClientAppKey, app)
	ctx = context.WithValue(ctx, types.JSONOutputKey, jsonOutput)
	cmd.SetContext(ctx)

	return nil
}

func closeApp(cmd *cobra.Command, _ []string) error {
	app, err := types.App(cmd)
	if err != nil {
		return nil
	}
	return app.Close()
}

func init() {
	// Глобальные флаги
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "конфигурационный файл (yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "включить отладочный режим")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "вывод в формате JSON")
	rootCmd.PersistentFlags().StringVar(&storeURL, "store", "", "URL сервиса хранилища объектов")

	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(video.VideoCmd)
	rootCmd.AddCommand(admin.AdminCmd)
}
