package main

import (
	"time"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the lookup cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show lookup cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached lookup",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// CacheInfoResponse is the JSON output of cache info.
type CacheInfoResponse struct {
	Path    string         `json:"path"`
	Entries int            `json:"entries"`
	Sources map[string]int `json:"sources"`
	Oldest  time.Time      `json:"oldest,omitzero"`
	Newest  time.Time      `json:"newest,omitzero"`
}

// CacheClearResponse is the JSON output of cache clear.
type CacheClearResponse struct {
	Status  string `json:"status"`
	Path    string `json:"path"`
	Removed int64  `json:"removed"`
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	info, err := cache.Info(cmd.Context())
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if !humanOutput {
		return outputJSON(w, CacheInfoResponse{
			Path:    cfg.CachePath,
			Entries: info.Entries,
			Sources: info.Sources,
			Oldest:  info.Oldest,
			Newest:  info.Newest,
		})
	}

	outputHuman(w, "Cache: %s\n", cfg.CachePath)
	outputHuman(w, "Entries: %d\n", info.Entries)
	for source, n := range info.Sources {
		outputHuman(w, "  %s: %d\n", source, n)
	}
	if info.Entries > 0 {
		outputHuman(w, "Oldest: %s\n", info.Oldest.Format(time.RFC3339))
		outputHuman(w, "Newest: %s\n", info.Newest.Format(time.RFC3339))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Clear(cmd.Context())
	if err != nil {
		return err
	}
	logger.Info("cleared lookup cache", "path", cfg.CachePath, "removed", n)

	w := cmd.OutOrStdout()
	if humanOutput {
		outputHuman(w, "Removed %d cached lookups from %s\n", n, cfg.CachePath)
		return nil
	}
	return outputJSON(w, CacheClearResponse{Status: "cleared", Path: cfg.CachePath, Removed: n})
}
