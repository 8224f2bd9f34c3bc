package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/fleetwatch/internal/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the geolocation cache",
	RunE:  runCacheInfo,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show geolocation cache contents",
	RunE:  runCacheInfo,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached geolocation records",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheInfo(cmd *cobra.Command, args []string) error {
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	geoStorage := storage.NewGeoStorage(db)

	count, err := geoStorage.Count()
	if err != nil {
		return fmt.Errorf("failed to count cache entries: %w", err)
	}

	fmt.Printf("Cached IPs: %d\n", count)
	if count == 0 {
		return nil
	}

	records, err := geoStorage.Load()
	if err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}

	failed := 0
	for _, rec := range records {
		if !rec.Valid() {
			failed++
		}
	}
	fmt.Printf("Resolved:   %d\n", count-failed)
	fmt.Printf("Failed:     %d\n", failed)

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	db, err := storage.Initialize(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := storage.NewGeoStorage(db).Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	fmt.Println("Geolocation cache cleared")
	return nil
}
