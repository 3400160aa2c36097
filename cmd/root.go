package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lehmann314159/tangocho/internal/app"
	"github.com/lehmann314159/tangocho/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "tangocho",
	Short: "Japanese vocabulary study engine",
	Long: "Tangocho tracks study progress over per-part-of-speech word datasets, " +
		"composes daily review and new-word tasks, and generates multi-day study plans.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .tangocho.yaml)")
	rootCmd.PersistentFlags().String("db", "", "database path (default data/tangocho.db)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding modules/<type>/data/<type>.json")

	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
}

func initConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".tangocho")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("TANGOCHO")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}

// openApp loads the configuration and builds the application
func openApp() (*app.Application, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("failed to start: %w", err)
	}
	return a, cfg, nil
}
