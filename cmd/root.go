// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/googlecloudplatform/gcsstream/cfg"
	"github.com/googlecloudplatform/gcsstream/common"
	"github.com/googlecloudplatform/gcsstream/internal/logger"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sys/unix"
)

// rootOptions holds the state shared by the subcommands of one invocation.
type rootOptions struct {
	v          *viper.Viper
	configFile string
	config     cfg.Config
	newApp     appFactory
}

// NewRootCmd builds the gcsstream command tree. newApp assembles the stream
// registry once the configuration is resolved.
func NewRootCmd(newApp appFactory) (*cobra.Command, error) {
	o := &rootOptions{v: viper.New(), newApp: newApp}

	rootCmd := &cobra.Command{
		Use:   "gcsstream",
		Short: "Stream objects to and from Google Cloud Storage",
		Long: `gcsstream reads and writes gs:// URLs by rewriting them to the Cloud Storage
HTTPS endpoints and attaching the caller's credentials. Tokens come from
GCS_OAUTH_TOKEN, or from a credential helper when GOOGLE_APPLICATION_CREDENTIALS
is set. GCS_REQUESTER_PAYS_PROJECT bills requests to the named project.`,
		Version:       common.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.resolveConfig()
		},
	}
	rootCmd.PersistentFlags().StringVar(&o.configFile, "config-file", "", "The path to the config file where all gcsstream related config needs to be specified.")
	if err := cfg.BindFlags(o.v, rootCmd.PersistentFlags()); err != nil {
		return nil, fmt.Errorf("error while binding flags: %w", err)
	}

	rootCmd.AddCommand(
		newCatCmd(o),
		newCpCmd(o),
		newURLCmd(),
		newTokenCmd(o),
		newVersionCmd(),
	)
	return rootCmd, nil
}

func (o *rootOptions) resolveConfig() error {
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
		o.v.SetConfigType("yaml")
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error while reading the config file: %w", err)
		}
	}

	err := o.v.Unmarshal(&o.config, viper.DecodeHook(cfg.DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
		// Reject unknown keys in the config file.
		decoderConfig.ErrorUnused = true
	})
	if err != nil {
		return fmt.Errorf("error while parsing config: %w", err)
	}

	cfg.Rationalize(&o.config, common.GetVersion())
	if err = cfg.ValidateConfig(&o.config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if err = logger.InitLogFile(o.config.Logging); err != nil {
		return fmt.Errorf("init log file: %w", err)
	}
	if configString, err := cfg.YAMLStringify(o.config); err == nil {
		logger.Debugf("Resolved config:\n%s", configString)
	}
	return nil
}

// app builds the stream environment for the resolved config.
func (o *rootOptions) app(ctx context.Context) (*app, error) {
	return o.newApp(ctx, &o.config)
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	rootCmd, err := NewRootCmd(newApp)
	if err == nil {
		err = rootCmd.ExecuteContext(ctx)
	}
	logger.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
