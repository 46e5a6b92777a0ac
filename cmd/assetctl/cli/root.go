package cli

import (
	"Go_Site/config"
	"Go_Site/internal/repo"
	"Go_Site/internal/service"
	"Go_Site/internal/storage"
	"Go_Site/internal/task"
	"Go_Site/utils"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type VersionInfo struct {
	Version string
	Commit  string
}

// ServiceFactory builds the AssetService the commands operate on.
type ServiceFactory func() (*service.AssetService, error)

// InitDefault initializes config, logging and backends from the environment.
func InitDefault() (*service.AssetService, error) {
	config.InitConfig()
	utils.InitLogger(utils.LoggerOptions{
		Level: config.AppConfig.LogLevel,
		File:  config.AppConfig.LogFile,
		JSON:  config.AppConfig.LogJSON,
	})
	repo.InitDatabase()
	repo.InitRedis()
	storage.InitStorage()
	return service.NewDefault(task.NewRabbitQueue(repo.Db))
}

func NewRootCommand(info VersionInfo, factory ServiceFactory) *cobra.Command {
	var mediaConfig string
	var svc *service.AssetService

	cmd := &cobra.Command{
		Use:           "assetctl",
		Short:         "Inspect and manage the site media pool",
		Long:          "assetctl lists assets, shows where they are used, and runs the guarded rename and delete operations from a shell.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if mediaConfig != "" {
				if err := os.Setenv("MEDIA_CONFIG", mediaConfig); err != nil {
					return err
				}
			}
			var err error
			svc, err = factory()
			if err != nil {
				return fmt.Errorf("failed to initialize asset service: %w", err)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&mediaConfig, "media-config", "", "media config file (default is ./media.yaml)")
	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	get := func() *service.AssetService { return svc }
	cmd.AddCommand(newListCommand(get))
	cmd.AddCommand(newUsageCommand(get))
	cmd.AddCommand(newRenameCommand(get))
	cmd.AddCommand(newDeleteCommand(get))
	cmd.AddCommand(newQuotaCommand(get))

	return cmd
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
