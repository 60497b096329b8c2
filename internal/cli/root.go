// Package cli provides the pulse command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/azure/brand-pulse/internal/analyses"
	"github.com/azure/brand-pulse/internal/config"
	"github.com/azure/brand-pulse/internal/explorer"
	"github.com/azure/brand-pulse/internal/history"
	"github.com/azure/brand-pulse/internal/models"
	"github.com/azure/brand-pulse/internal/notifications"
	"github.com/azure/brand-pulse/internal/sources"
	"github.com/azure/brand-pulse/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// session is the state shared by the subcommands of one invocation
type session struct {
	cfg     *config.Config
	client  *sources.APIClient
	service *explorer.Service
	close   func() error
}

var (
	verbose bool
	current *session
)

var rootCmd = &cobra.Command{
	Use:           "pulse",
	Short:         "Search Reddit and analyze brand sentiment from the terminal",
	Long:          "pulse runs keyword searches across subreddits through the search service, keeps a local search history and saves brand sentiment analyses.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		current = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		closeSession(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if current != nil {
			closeSession(os.Stderr)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", models.UserMessage(err))
	}
	return err
}

func openSession() (*session, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logrus.SetLevel(logrus.WarnLevel)
	if verbose || cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	kv, closeKV, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	client := sources.NewAPIClient(cfg.APIBaseURL, cfg.RequestTimeout)
	service := explorer.NewService(
		client,
		client,
		history.New(kv),
		analyses.New(kv, cfg.AnalysisCacheCapacity),
		notifications.NewQueue(0),
	)

	return &session{cfg: cfg, client: client, service: service, close: closeKV}, nil
}

// closeSession prints what the session reported and releases storage
func closeSession(w io.Writer) {
	if current == nil {
		return
	}
	printNotifications(w, current.service.Notifications().List())
	if err := current.close(); err != nil {
		logrus.Warnf("Failed to close storage: %v", err)
	}
	current = nil
}
