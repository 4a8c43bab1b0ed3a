package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/api"
	applog "github.com/spigell/skill-matcher/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching engine over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("address", "a", "", "listen address (default :8080)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := applog.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the skill-matcher server", zap.String("version", version))

	src, err := openSources(ctx, config, logger)
	if err != nil {
		logger.Fatal("opening data sources", zap.Error(err))
	}
	defer src.Close()

	eng, err := newEngine(config, src.loader, logger)
	if err != nil {
		logger.Fatal("starting engine", zap.Error(err))
	}

	opts := []api.Option{api.WithLogger(logger)}
	if config.Persist {
		opts = append(opts, api.WithScoreSaver(src.store))
	}

	if err := api.NewServer(eng, opts...).Run(ctx, config.Server.Address); err != nil {
		logger.Error("http server stopped", zap.Error(err))
	}
}
