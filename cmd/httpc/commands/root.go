// Package commands implements the httpc command line.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/linked-planet/go-http-client/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Viper keys of the global flags.
const (
	keyConfig   = "config"
	keyBaseURL  = "base-url"
	keyUsername = "username"
	keyPassword = "password"
	keyBackend  = "backend"
	keyRedis    = "redis"
	keyCacheTTL = "cache-ttl"
	keyLogLevel = "log-level"
	keyPretty   = "pretty"
)

// Backend names accepted by --backend.
const (
	BackendBasic   = "basic"
	BackendAppLink = "applink"
)

// NewRootCommand creates the httpc root command with all subcommands.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "httpc",
		Short: "REST client for Jira/Insight style APIs",
		Long: `A command-line client that issues REST calls, downloads, uploads and
paginated fetches through one of two backends:

  basic    resty with Basic Auth; every response is printed, whatever its status
  applink  application link transport; non-2xx responses fail with an
           interface error`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
			logging.Setup(logging.Config{
				Level:  viper.GetString(keyLogLevel),
				Pretty: viper.GetBool(keyPretty),
				Output: cmd.ErrOrStderr(),
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP(keyConfig, "c", "", "config file (default is $HOME/.httpc/config.yml)")
	flags.StringP(keyBaseURL, "u", "", "base URL of the remote application")
	flags.String(keyUsername, "", "Basic Auth user")
	flags.String(keyPassword, "", "Basic Auth password (prompted when empty on a terminal)")
	flags.String(keyBackend, BackendBasic, "transport backend (basic, applink)")
	flags.String(keyRedis, "", "Redis address; enables the GET response cache")
	flags.Duration(keyCacheTTL, 0, "TTL of cached responses (default 5m)")
	flags.String(keyLogLevel, "info", "log level (trace, debug, info, warn, error, off)")
	flags.Bool(keyPretty, false, "human readable log output")

	for _, key := range []string{keyConfig, keyBaseURL, keyUsername, keyPassword, keyBackend, keyRedis, keyCacheTTL, keyLogLevel, keyPretty} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}

	rootCmd.AddCommand(NewCallCommand())
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewDownloadCommand())
	rootCmd.AddCommand(NewUploadCommand())
	rootCmd.AddCommand(NewPaginateCommand())
	rootCmd.AddCommand(NewServeCommand())

	return rootCmd
}

func initConfig() {
	cfgFile := viper.GetString(keyConfig)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".httpc"))
		}
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// HTTPC_BASE_URL, HTTPC_PASSWORD, ...
	viper.SetEnvPrefix("HTTPC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
	}
}
