package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"frost/builder/config"
	"frost/builder/freezer"
	"frost/internal/clean"
	"frost/internal/new"
	"frost/internal/scaffold"
	"frost/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch command {
	case "init":
		if err := scaffold.Run(args); err != nil {
			fatal(false, err)
		}
	case "new":
		cfg := config.Load(nil)
		if err := new.Run(cfg, args); err != nil {
			fatal(false, err)
		}
	case "freeze":
		cfg := config.Load(args)
		fcfg, err := config.LoadFreeze(config.FreezeFile)
		// Flags overlay even when the file failed, so -debug governs
		// how the load error itself is reported.
		fcfg, flagErr := config.ApplyFreezeFlags(fcfg, args)
		if err != nil {
			fatal(fcfg.Debug, err)
		}
		if flagErr != nil {
			fatal(fcfg.Debug, flagErr)
		}
		if err := runFreeze(ctx, cfg, fcfg); err != nil {
			fatal(fcfg.Debug, err)
		}
	case "serve":
		cfg := config.Load(nil)
		fcfg, err := config.LoadFreeze(config.FreezeFile)
		if err != nil {
			fatal(fcfg.Debug, err)
		}
		if err := server.Run(ctx, cfg, fcfg, args); err != nil {
			fatal(fcfg.Debug, err)
		}
	case "clean":
		cfg := config.Load(nil)
		fcfg, err := config.LoadFreeze(config.FreezeFile)
		if err != nil {
			fatal(fcfg.Debug, err)
		}
		fs := flag.NewFlagSet("clean", flag.ExitOnError)
		cleanCache := fs.Bool("cache", false, "Also delete the freeze cache")
		_ = fs.Parse(args)
		if err := clean.Run(cfg, fcfg, *cleanCache); err != nil {
			fatal(fcfg.Debug, err)
		}
	case "cache":
		cfg := config.Load(nil)
		handleCacheCommand(cfg, args)
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// runFreeze keeps the lock release on the normal defer path before
// fatal can exit the process.
func runFreeze(ctx context.Context, cfg *config.Config, fcfg config.FreezeConfig) error {
	frz, err := freezer.New(cfg, fcfg)
	if err != nil {
		return err
	}
	defer func() { _ = frz.Close() }()

	return frz.Freeze(ctx)
}

// fatal reports err and exits. With debug on, the cause chain is
// spelled out link by link; otherwise the joined message has to do.
func fatal(debug bool, err error) {
	var unknown *config.UnknownOptionError
	if errors.As(err, &unknown) {
		fmt.Fprintf(os.Stderr, "❌ %v\n", unknown)
		fmt.Fprintf(os.Stderr, "   Recognized options: %s\n", strings.Join(config.OptionNames(), ", "))
		os.Exit(2)
	}

	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	if debug {
		for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
			fmt.Fprintf(os.Stderr, "   caused by: %v\n", cause)
		}
	}
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Usage: frost <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  init            Scaffold a new site in the current directory")
	fmt.Println("  new [kind] <t>  Create a post (default) or page with title <t>")
	fmt.Println("  freeze          Freeze the site into the destination directory")
	fmt.Println("  serve           Freeze, then serve with auto-reload")
	fmt.Println("  clean           Delete the frozen output")
	fmt.Println("  cache           Inspect or clear the freeze cache")
	fmt.Println("  help            Show this help message")
	fmt.Println("\nFlags for freeze:")
	fmt.Println("  -baseurl <url>  Override the configured base URL")
	fmt.Println("  -dest <dir>     Override the destination directory")
	fmt.Println("  -relative       Freeze relative URLs")
	fmt.Println("  -debug          Verbose error reports")
	fmt.Println("  -drafts         Include posts without a date")
	fmt.Println("  -force          Ignore the freeze cache")
	fmt.Println("  -compress       Minify HTML and fingerprint assets")
	fmt.Println("\nFlags for serve:")
	fmt.Println("  -host, -port    Listen address (default from blog.yaml)")
	fmt.Println("\nFlags for clean:")
	fmt.Println("  -cache          Also delete the freeze cache")
}
