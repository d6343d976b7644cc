/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trailimage/trailmap/api"
	"github.com/trailimage/trailmap/common"
	"github.com/trailimage/trailmap/daemon/webd"
	"github.com/trailimage/trailmap/params"
)

// webdCmd represents the serve command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Start the webserver",
	Long: `Serves post tracks, summaries and photo locations over HTTP.

Write endpoints (POST /posts/{slug}/track, POST /posts/{slug}/photos and
the /cache endpoints) require the token, sent as the Authorization header
or the api_token query param. Without a token anyone may write.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)

		config, err := loadConfig()
		if err != nil {
			return err
		}
		webConfig := params.DefaultWebDaemonConfig()
		if err := viper.Unmarshal(webConfig); err != nil {
			return err
		}

		site, err := api.NewSite(config)
		if err != nil {
			return err
		}
		defer site.Close()

		server, err := webd.NewWebDaemon(webConfig, site)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			sig := <-common.Interrupted()
			slog.Warn("Received signal", "signal", sig)
			cancel()
		}()

		return server.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	pFlags := webdCmd.PersistentFlags()
	pFlags.String("network", defaults.Network, "Network to listen on (tcp, tcp4, tcp6, unix)")
	pFlags.String("address", defaults.Address, "HTTP address to listen on")
	pFlags.String("token", defaults.Token, "Token guarding write endpoints (env TRAILMAP_TOKEN)")

	bindFlags(pFlags, map[string]string{
		"network": "network",
		"address": "address",
		"token":   "token",
	})
}
