package main

import (
	"fmt"
	"os"
	"time"

	"frost/builder/cache"
	"frost/builder/config"
)

func handleCacheCommand(cfg *config.Config, args []string) {
	if len(args) < 1 {
		printCacheUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "stats":
		cacheStats(cfg)
	case "verify":
		cacheVerify(cfg)
	case "clear":
		cacheClear(cfg)
	case "inspect":
		if len(subArgs) < 1 {
			fmt.Println("Usage: frost cache inspect <path>")
			os.Exit(1)
		}
		cacheInspect(cfg, subArgs[0])
	default:
		fmt.Printf("Unknown cache subcommand: %s\n", subcommand)
		printCacheUsage()
		os.Exit(1)
	}
}

func printCacheUsage() {
	fmt.Println("Usage: frost cache <subcommand> [arguments]")
	fmt.Println("\nSubcommands:")
	fmt.Println("  stats          Show cache statistics")
	fmt.Println("  verify         Check cache integrity")
	fmt.Println("  clear          Delete all cache data")
	fmt.Println("  inspect <path> Show the cache entry for a source file")
}

// openCache opens in production mode; durability beats speed for
// one-shot commands.
func openCache(cfg *config.Config) *cache.Manager {
	cm, err := cache.Open(cfg.CacheDir, false)
	if err != nil {
		fmt.Printf("❌ Failed to open cache: %v\n", err)
		os.Exit(1)
	}
	return cm
}

func cacheStats(cfg *config.Config) {
	cm := openCache(cfg)
	defer func() { _ = cm.Close() }()

	stats, err := cm.Stats()
	if err != nil {
		fmt.Printf("❌ Failed to get stats: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("📊 Cache Statistics")
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("Schema Version:  %d\n", stats.SchemaVersion)
	fmt.Printf("Cached Pages:    %d\n", stats.TotalPages)
	fmt.Printf("Diagrams:        %d\n", stats.TotalDiagrams)
	fmt.Printf("Social Cards:    %d\n", stats.TotalCards)
	fmt.Printf("Store Size:      %.2f MB\n", float64(stats.StoreBytes)/(1024*1024))
	fmt.Printf("Freeze Count:    %d\n", stats.FreezeCount)

	if stats.LastFreeze > 0 {
		fmt.Printf("Last Freeze:     %s\n", time.Unix(stats.LastFreeze, 0).Format(time.RFC3339))
	} else {
		fmt.Printf("Last Freeze:     never\n")
	}
}

func cacheVerify(cfg *config.Config) {
	cm := openCache(cfg)
	defer func() { _ = cm.Close() }()

	fmt.Println("🔍 Verifying cache integrity...")

	problems, err := cm.Verify()
	if err != nil {
		fmt.Printf("❌ Verification failed: %v\n", err)
		os.Exit(1)
	}

	if len(problems) == 0 {
		fmt.Println("✅ Cache is healthy - no issues found")
		return
	}
	fmt.Printf("⚠️  Found %d issues:\n", len(problems))
	for i, p := range problems {
		fmt.Printf("  %d. %s\n", i+1, p)
	}
}

func cacheClear(cfg *config.Config) {
	cm := openCache(cfg)

	fmt.Println("🗑️  Clearing all cache data...")

	if err := cm.Clear(); err != nil {
		fmt.Printf("❌ Failed to clear cache: %v\n", err)
		os.Exit(1)
	}
	_ = cm.Close()

	fmt.Println("✅ Cache cleared")
}

func cacheInspect(cfg *config.Config, path string) {
	cm := openCache(cfg)
	defer func() { _ = cm.Close() }()

	page, err := cm.GetPageByPath(path)
	if err != nil {
		fmt.Printf("❌ Error looking up path: %v\n", err)
		os.Exit(1)
	}
	if page == nil {
		fmt.Printf("❌ No cache entry found for: %s\n", path)
		os.Exit(1)
	}

	fmt.Println("📄 Cache Entry")
	fmt.Println("════════════════════════════════════════")
	fmt.Printf("PageID:       %s\n", page.PageID)
	fmt.Printf("Path:         %s\n", page.Path)
	fmt.Printf("Title:        %s\n", page.Title)
	fmt.Printf("Route:        %s\n", page.Route)
	fmt.Printf("ModTime:      %s\n", time.Unix(page.ModTime, 0).Format(time.RFC3339))
	fmt.Printf("BodyHash:     %s\n", truncateHash(page.BodyHash))
	fmt.Printf("HTMLHash:     %s\n", truncateHash(page.HTMLHash))
	fmt.Printf("Date:         %s\n", page.Date.Format("2006-01-02"))
	fmt.Printf("Tags:         %v\n", page.Tags)
	fmt.Printf("ReadingTime:  %d min\n", page.ReadingTime)
	fmt.Printf("Draft:        %v\n", page.Draft)
	if len(page.InlineHTML) > 0 {
		fmt.Printf("Storage:      inline (%d bytes)\n", len(page.InlineHTML))
	} else {
		fmt.Printf("Storage:      blob store\n")
	}
	if len(page.LinkedRoutes) > 0 {
		fmt.Printf("Links:        %v\n", page.LinkedRoutes)
	}
}

func truncateHash(hash string) string {
	if len(hash) > 16 {
		return hash[:8] + "..." + hash[len(hash)-8:]
	}
	return hash
}
