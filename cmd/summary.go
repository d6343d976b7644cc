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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trailimage/trailmap/names"
	"github.com/trailimage/trailmap/state"
)

var optSummaryJSON bool

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary [post]",
	Short: "Print stored track summaries",
	Long: `Prints the summary of a post's track, or a one line summary of every post.
The store is opened read-only, but bbolt still waits on a running web daemon's lock.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)

		config, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := state.Open(config.DataDir, true)
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			sum, err := store.GetSummary(names.Slug(args[0]))
			if err != nil {
				return err
			}
			if !optSummaryJSON {
				_, err = fmt.Fprintln(out, sum)
				return err
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(sum)
		}

		slugs, err := store.Slugs()
		if err != nil {
			return err
		}
		for _, slug := range slugs {
			sum, err := store.GetSummary(slug)
			if err != nil {
				fmt.Fprintf(out, "%s: no track\n", slug)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", slug, sum)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().BoolVar(&optSummaryJSON, "json", false, "Print the summary as JSON")
}
