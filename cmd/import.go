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
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/trailimage/trailmap/api"
	"github.com/trailimage/trailmap/common"
	"github.com/trailimage/trailmap/names"
)

var optImportPhotos bool
var optWorkersN int

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <post> [file]",
	Short: "Import a post's GPX track or photos",
	Long: `Imports a GPX track, or with --photos a photo document, for a post.

The post name is slugged, so "Kaniksu Loop" and kaniksu-loop are the same post.
Input is read from file, or stdin when file is omitted or "-".
Gzipped input is detected and decompressed.

Photo documents may be a Flickr photoset (photoset.photo), a Flickr search
result (photos.photo), a bare array of either, or a GeoJSON FeatureCollection.

The web daemon holds the store open; stop it before importing, or POST to it instead.

Examples:

  trailmap import "Kaniksu Loop" ~/gps/kaniksu.gpx
  zcat kaniksu.gpx.gz | trailmap import kaniksu-loop
  trailmap import --photos kaniksu-loop photoset.json
`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		setDefaultSlog(cmd, args)

		slug := names.Slug(args[0])
		if slug.Empty() {
			return fmt.Errorf("invalid post name %q", args[0])
		}
		name := "-"
		if len(args) == 2 {
			name = args[1]
		}
		in, err := openInput(name)
		if err != nil {
			return err
		}
		defer in.Close()

		config, err := loadConfig()
		if err != nil {
			return err
		}
		site, err := api.NewSite(config)
		if err != nil {
			return err
		}
		defer site.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			sig := <-common.Interrupted()
			slog.Warn("Received signal", "signal", sig)
			cancel()
		}()

		if optImportPhotos {
			data, err := io.ReadAll(in)
			if err != nil {
				return err
			}
			photos, err := site.ImportPhotos(ctx, slug, data)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d photos\n", slug, len(photos))
			return nil
		}

		sum, err := site.ImportGPX(ctx, slug, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", slug, sum)
		return nil
	},
}

// importDirCmd represents the import-dir command
var importDirCmd = &cobra.Command{
	Use:   "import-dir <root>",
	Short: "Import every post directory under root",
	Long: `Imports each directory under root as the post it is named for.

A post directory may hold track.gpx (or track.gpx.gz), photos.json
(or photos.json.gz), or both. Directories with neither are skipped.
A failing post is reported and does not stop the rest.

Examples:

  trailmap import-dir --workers 4 ~/trailimage/posts
`,
	Args: cobra.ExactArgs(1),
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

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			sig := <-common.Interrupted()
			slog.Warn("Received signal", "signal", sig)
			cancel()
		}()

		results, err := site.ImportDir(ctx, args[0], optWorkersN)
		out := cmd.OutOrStdout()
		failed := 0
		for _, r := range results {
			switch {
			case r.Err != nil:
				failed++
				fmt.Fprintf(out, "%s: FAILED: %v\n", r.Slug, r.Err)
			case r.Summary != nil:
				fmt.Fprintf(out, "%s: %s, %d photos\n", r.Slug, r.Summary, r.Photos)
			default:
				fmt.Fprintf(out, "%s: %d photos\n", r.Slug, r.Photos)
			}
		}
		if err != nil {
			return err
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d posts failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(importDirCmd)

	importCmd.Flags().BoolVar(&optImportPhotos, "photos", false, "Input is a photo document, not GPX")
	importDirCmd.Flags().IntVar(&optWorkersN, "workers", 4, "Posts to import in parallel")
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openInput opens name, or stdin for "-", decompressing gzip.
func openInput(name string) (io.ReadCloser, error) {
	rc := &readCloser{}
	var f io.Reader = os.Stdin
	if name != "-" {
		file, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		rc.closers = append(rc.closers, file)
		f = file
	}
	br := bufio.NewReader(f)
	magic, _ := br.Peek(2)
	if bytes.Equal(magic, []byte{0x1f, 0x8b}) {
		gzr, err := gzip.NewReader(br)
		if err != nil {
			rc.Close()
			return nil, err
		}
		rc.closers = append(rc.closers, gzr)
		rc.Reader = gzr
		return rc, nil
	}
	rc.Reader = br
	return rc, nil
}
