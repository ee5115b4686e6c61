package cmd

import (
	_ "github.com/joho/godotenv/autoload"
	"github.com/payraan/twelvedata/internal/common"
	"github.com/payraan/twelvedata/internal/server"
	"github.com/payraan/twelvedata/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "twelvedata",
	Short: "HTTP gateway for the Twelve Data market data API",
	Long: `twelvedata is a small HTTP gateway that fronts the Twelve Data API:
stocks, forex, crypto, ETFs and technical indicators, with the API key
injected server-side, response caching for reference catalogs and per-client
rate limiting.`,
}

func InitializeCommands(a *server.App, versionInfo common.VersionInfo) {
	rootCmd.AddCommand(NewServeCommand(a))
	rootCmd.AddCommand(NewVersionCommand(versionInfo))
}

func Execute(a *server.App, versionInfo common.VersionInfo) {
	InitializeCommands(a, versionInfo)
	cobra.CheckErr(rootCmd.Execute())
}

func ExecuteCLI(build, commit, date string) {
	versionInfo := common.GetVersionInfo(build, commit, date)

	buildInfo := &common.BuildConfig{
		BuildVersion: versionInfo.Version,
		BuildCommit:  versionInfo.Commit,
		BuildDate:    versionInfo.Date,
	}

	a, err := server.NewServerApp(buildInfo)
	if err != nil {
		logger.Fatal("Failed to initialize application", "error", err)
	}

	Execute(a, versionInfo)
}
