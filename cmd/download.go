package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/icao-airports/internal/fetcher"
	"github.com/sells-group/icao-airports/internal/resilience"
)

var downloadCmd = &cobra.Command{
	Use:     "download",
	Aliases: []string{"dl"},
	Short:   "Download the airport registry CSV",
	Long:    "Fetches the OurAirports airports.csv with bounded retry on transient HTTP statuses and replaces the local copy.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("download"); err != nil {
			return err
		}
		url, _ := cmd.Flags().GetString("url")
		if url == "" {
			url = cfg.Source.URL
		}
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = cfg.Source.Path
		}
		ifChanged, _ := cmd.Flags().GetBool("if-changed")

		f := newFetcher()
		log := zap.L().With(zap.String("url", url), zap.String("path", out))
		log.Info("downloading registry")
		start := time.Now()

		if ifChanged {
			changed, n, err := downloadIfChanged(ctx, f, url, out)
			if err != nil {
				return eris.Wrap(err, "download")
			}
			if !changed {
				fmt.Printf("%s is up to date\n", out)
				return nil
			}
			metrics.AddDownloaded(n)
			fmt.Printf("Downloaded %s to %s in %s\n", humanize.Bytes(uint64(n)), out, time.Since(start).Round(time.Millisecond))
			return nil
		}

		n, err := f.DownloadToFile(ctx, url, out)
		if err != nil {
			return eris.Wrap(err, "download")
		}
		metrics.AddDownloaded(n)
		fmt.Printf("Downloaded %s to %s in %s\n", humanize.Bytes(uint64(n)), out, time.Since(start).Round(time.Millisecond))
		return nil
	},
}

func newFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:     cfg.HTTP.UserAgent,
		Timeout:       time.Duration(cfg.HTTP.TimeoutSecs) * time.Second,
		Retry:         resilience.FromSettings(cfg.HTTP.MaxAttempts, cfg.HTTP.InitialBackoffMs, cfg.HTTP.MaxBackoffMs),
		RetryStatuses: cfg.HTTP.RetryStatuses,
		RatePerSec:    cfg.HTTP.RatePerSec,
	})
}

// downloadIfChanged keeps the last ETag in a sidecar file next to out.
func downloadIfChanged(ctx context.Context, f fetcher.Fetcher, url, out string) (bool, int64, error) {
	etagPath := out + ".etag"
	etag := ""
	if _, err := os.Stat(out); err == nil {
		if b, err := os.ReadFile(etagPath); err == nil {
			etag = strings.TrimSpace(string(b))
		}
	}

	body, newETag, changed, err := f.DownloadIfChanged(ctx, url, etag)
	if err != nil {
		return false, 0, err
	}
	if !changed {
		return false, 0, nil
	}
	defer body.Close() //nolint:errcheck

	data, err := io.ReadAll(body)
	if err != nil {
		return false, 0, eris.Wrap(err, "read body")
	}
	if err := writeOutput(out, data); err != nil {
		return false, 0, err
	}
	if newETag != "" {
		if err := os.WriteFile(etagPath, []byte(newETag+"\n"), 0o644); err != nil {
			return true, int64(len(data)), eris.Wrapf(err, "write %s", etagPath)
		}
	}
	return true, int64(len(data)), nil
}

func init() {
	downloadCmd.Flags().String("url", "", "registry URL (default: source.url)")
	downloadCmd.Flags().String("out", "", "destination path (default: source.path)")
	downloadCmd.Flags().Bool("if-changed", false, "skip the download when the server ETag is unchanged")
	rootCmd.AddCommand(downloadCmd)
}
