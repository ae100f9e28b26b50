// filemapctl is a CLI for inspecting and building filemap files. It is the
// stand-in for the "indexer driver" the core library assumes exists
// upstream: everything it does goes through the public filemap API, never
// through a private shortcut.
//
// Usage:
//
//	filemapctl build <symbols|locations> <map-file> <csv-file>   Build a map file from CSV input
//	filemapctl info <symbols|locations> <map-file>               Print header info
//	filemapctl get <symbols|locations> <map-file> <key>           Look up one key
//	filemapctl repl <symbols|locations> <map-file>                Open an interactive shell
//
// The manifest file (.filemapctl.jsonc by default) lets these commands
// take a short name instead of a map-file path. Set FILEMAPCTL_CONFIG to
// point at a manifest outside the current directory.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/Gei0r/rtags/internal/manifest"
	"github.com/Gei0r/rtags/pkg/filemap"
	"github.com/Gei0r/rtags/pkg/symbolmap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "filemapctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		printUsage()

		return errors.New("missing command")
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "build":
		return runBuild(rest)
	case "info":
		return runInfo(rest)
	case "get":
		return runGet(rest)
	case "repl":
		return runRepl(rest)
	default:
		printUsage()

		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  filemapctl build <symbols|locations> <map-file> <csv-file>")
	fmt.Fprintln(os.Stderr, "  filemapctl info <symbols|locations> <map-file>")
	fmt.Fprintln(os.Stderr, "  filemapctl get <symbols|locations> <map-file> <key>")
	fmt.Fprintln(os.Stderr, "  filemapctl repl <symbols|locations> <map-file>")
}

// kind selects which domain codec pair a sub-command operates on.
type kind string

const (
	kindSymbols   kind = "symbols"
	kindLocations kind = "locations"
)

func parseKind(s string) (kind, error) {
	switch kind(s) {
	case kindSymbols, kindLocations:
		return kind(s), nil
	default:
		return "", fmt.Errorf("unknown map kind %q (want %q or %q)", s, kindSymbols, kindLocations)
	}
}

func runBuild(args []string) error {
	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	atomicRename := fs.Bool("atomic", false, "write via a temp file + rename instead of truncate-in-place")

	if err := fs.Parse(args); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) < 3 {
		return errors.New("usage: filemapctl build <symbols|locations> <map-file> <csv-file>")
	}

	k, err := parseKind(rest[0])
	if err != nil {
		return err
	}

	mapPath, csvPath := resolveMapPath(rest[1]), rest[2]

	opts := filemap.Options(0)
	if *atomicRename {
		opts |= filemap.AtomicRename
	}

	f, err := os.Open(csvPath) //nolint:gosec // operator-supplied path
	if err != nil {
		return fmt.Errorf("open %s: %w", csvPath, err)
	}
	defer f.Close()

	n, err := buildFromCSV(k, mapPath, f, opts)
	if err != nil {
		return err
	}

	fmt.Printf("wrote %d bytes to %s\n", n, mapPath)

	return nil
}

func runInfo(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: filemapctl info <symbols|locations> <map-file>")
	}

	k, err := parseKind(args[0])
	if err != nil {
		return err
	}

	mapPath := resolveMapPath(args[1])

	switch k {
	case kindSymbols:
		r, err := symbolmap.OpenSymbolLocations(mapPath, 0)
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Printf("kind:    %s\n", k)
		fmt.Printf("entries: %d\n", r.Count())

	case kindLocations:
		r, err := symbolmap.OpenLocationSymbol(mapPath, 0)
		if err != nil {
			return err
		}
		defer r.Close()

		fmt.Printf("kind:    %s\n", k)
		fmt.Printf("entries: %d\n", r.Count())
	}

	return nil
}

func runGet(args []string) error {
	if len(args) < 3 {
		return errors.New("usage: filemapctl get <symbols|locations> <map-file> <key>")
	}

	k, err := parseKind(args[0])
	if err != nil {
		return err
	}

	mapPath := resolveMapPath(args[1])

	switch k {
	case kindSymbols:
		r, err := symbolmap.OpenSymbolLocations(mapPath, 0)
		if err != nil {
			return err
		}
		defer r.Close()

		locs, err := r.Lookup(args[2])
		if err != nil {
			return err
		}

		for _, loc := range locs {
			fmt.Printf("%d:%d:%d\n", loc.FileID, loc.Line, loc.Column)
		}

	case kindLocations:
		loc, err := parseLocation(args[2])
		if err != nil {
			return err
		}

		r, err := symbolmap.OpenLocationSymbol(mapPath, 0)
		if err != nil {
			return err
		}
		defer r.Close()

		sym, err := r.Lookup(loc)
		if err != nil {
			return err
		}

		fmt.Println(sym)
	}

	return nil
}

func parseLocation(s string) (symbolmap.Location, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return symbolmap.Location{}, fmt.Errorf("invalid location %q, want file:line:column", s)
	}

	fileID, err1 := strconv.ParseUint(parts[0], 10, 32)
	line, err2 := strconv.ParseUint(parts[1], 10, 32)
	col, err3 := strconv.ParseUint(parts[2], 10, 32)

	if err1 != nil || err2 != nil || err3 != nil {
		return symbolmap.Location{}, fmt.Errorf("invalid location %q, want file:line:column", s)
	}

	return symbolmap.Location{FileID: uint32(fileID), Line: uint32(line), Column: uint32(col)}, nil
}

// resolveMapPath resolves name to a map-file path via the manifest, falling
// back to treating name as a literal path when no manifest entry matches or
// no manifest exists. The manifest is read from FILEMAPCTL_CONFIG when set,
// otherwise from the default manifest name in the current working
// directory.
func resolveMapPath(name string) string {
	workDir, err := os.Getwd()
	if err != nil {
		return name
	}

	m, err := manifest.Load(manifest.DefaultPath(workDir, os.Getenv("FILEMAPCTL_CONFIG")))
	if err != nil {
		return name
	}

	if mf, ok := m.Find(name); ok {
		return mf.Path
	}

	return name
}
