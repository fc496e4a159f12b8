package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Rana718/tablekeep/internal/config"
)

var (
	cfgFile  string
	logLevel = &slog.LevelVar{}
	Version  = "0.3.0"
)

func showBanner() {
	greenColor := color.New(color.FgGreen, color.Bold)

	banner := []string{
		"╔══════════════════════════════════════════╗",
		"║   ▀█▀ ▄▀█ █▄▄ █   █▀▀ █▄▀ █▀▀ █▀▀ █▀█    ║",
		"║    █  █▀█ █▄█ █▄▄ ██▄ █ █ ██▄ ██▄ █▀▀    ║",
		"║                                          ║",
		"║      Named tables, kept between runs     ║",
		"╚══════════════════════════════════════════╝",
	}

	for _, line := range banner {
		greenColor.Println(line)
	}

	fmt.Print("              ")
	color.New(color.FgCyan, color.Bold).Print("Version: ")
	color.New(color.FgYellow, color.Bold).Printf("%s\n", Version)
}

var rootCmd = &cobra.Command{
	Use:   "tablekeep",
	Short: "Keep a set of named tables with columns and rows",
	Long: `
tablekeep manages a collection of named tables. Each table has ordered
columns and rows of text values. Every change is saved to the configured
storage and restored on the next run.

Storage Support:
- SQLite (default, file in the data directory)
- PostgreSQL
- MySQL`,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := viper.GetString("log_level")
		if flag := cmd.Flags().Lookup("log-level"); flag != nil && flag.Changed {
			level = flag.Value.String()
		}
		if level == "" {
			return nil
		}
		parsed, err := config.ParseLevel(level)
		if err != nil {
			return err
		}
		logLevel.Set(parsed)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		showVersion, _ := cmd.Flags().GetBool("version")
		if showVersion {
			fmt.Printf("tablekeep version %s\n", Version)
			return
		}

		showBanner()
		fmt.Println()
		cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tablekeep.config.json)")
	rootCmd.PersistentFlags().BoolP("force", "f", false, "Skip confirmations")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringP("table", "t", "", "Table to work on (default is the first table)")

	rootCmd.Flags().BoolP("version", "v", false, "Show CLI version")

	slog.SetDefault(newLogger())
}

func initConfig() {
	if err := godotenv.Load(); err != nil {
		godotenv.Load(".env")
		godotenv.Load(".env.local")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("json")
		viper.SetConfigName("tablekeep.config")
	}

	viper.SetEnvPrefix("TABLEKEEP")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

func newLogger() *slog.Logger {
	logLevel.Set(slog.LevelInfo)
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      logLevel,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	}))
}
