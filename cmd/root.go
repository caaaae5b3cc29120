// Package cmd contains the CLI entrypoints.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/shsnge/job-application-monitor/internal/config"
)

var (
	cfgFile   string
	debugMode bool
	jsonLogs  bool

	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "job-application-monitor",
	Short: "Monitor an inbox for job applications, score resumes and notify",
	Long: `job-application-monitor polls a Gmail inbox for candidate applications,
extracts resume data, scores each candidate against a job profile and appends
the result to an Excel workbook. Passing candidates trigger a WhatsApp alert;
every applicant gets an acknowledgment email.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Println(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "log in JSON format")
}

// initConfig wires viper: defaults, optional config file, environment
// overrides. Secrets are expected from the environment, never the file.
func initConfig() error {
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("JAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; everything has defaults or
		// comes from the environment. An explicitly given file must exist.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}
