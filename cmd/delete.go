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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trailimage/trailmap/api"
	"github.com/trailimage/trailmap/names"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <post>...",
	Short: "Delete posts' tracks, photos and archives",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)

		config, err := loadConfig()
		if err != nil {
			return err
		}
		site, err := api.NewSite(config)
		if err != nil {
			return err
		}
		defer site.Close()

		for _, arg := range args {
			slug := names.Slug(arg)
			if err := site.DeletePost(slug); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: deleted\n", slug)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
