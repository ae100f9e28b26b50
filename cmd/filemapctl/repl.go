package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/Gei0r/rtags/pkg/filemap"
	"github.com/Gei0r/rtags/pkg/symbolmap"
)

func runRepl(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: filemapctl repl <symbols|locations> <map-file>")
	}

	k, err := parseKind(args[0])
	if err != nil {
		return err
	}

	mapPath := resolveMapPath(args[1])

	r := &repl{kind: k, path: mapPath}

	switch k {
	case kindSymbols:
		r.symbols, err = symbolmap.OpenSymbolLocations(mapPath, filemap.NoLock)
	case kindLocations:
		r.locations, err = symbolmap.OpenLocationSymbol(mapPath, filemap.NoLock)
	}

	if err != nil {
		return err
	}

	defer r.close()

	return r.run()
}

// repl is the interactive shell: a thin loop over the public Reader API,
// so it exercises the same lookup/iteration path any other caller would.
type repl struct {
	kind kind
	path string

	symbols   *filemap.Reader[string, []symbolmap.Location]
	locations *filemap.Reader[symbolmap.Location, string]

	liner *liner.State
}

func (r *repl) close() {
	if r.symbols != nil {
		r.symbols.Close()
	}

	if r.locations != nil {
		r.locations.Close()
	}
}

func (r *repl) historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".filemapctl_history")
}

func (r *repl) run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)

	if f, err := os.Open(r.historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	count := 0
	if r.symbols != nil {
		count = r.symbols.Count()
	} else {
		count = r.locations.Count()
	}

	fmt.Printf("filemapctl - %s (%s, %d entries)\n", r.path, r.kind, count)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("filemapctl> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println("\nbye")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		cmdArgs := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			r.saveHistory()

			return nil

		case "help", "?":
			r.printHelp()

		case "get":
			r.cmdGet(cmdArgs)

		case "scan", "ls", "list":
			r.cmdScan(cmdArgs)

		case "len", "count":
			fmt.Println(count)

		default:
			fmt.Printf("unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return nil
}

func (r *repl) saveHistory() {
	path := r.historyFile()
	if path == "" {
		return
	}

	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer f.Close()

	r.liner.WriteHistory(f)
}

func (r *repl) printHelp() {
	fmt.Println("commands:")
	fmt.Println("  get <key>        look up one entry")
	fmt.Println("  scan [limit]     list entries in key order")
	fmt.Println("  len              entry count")
	fmt.Println("  help             show this help")
	fmt.Println("  exit             quit")
}

func (r *repl) cmdGet(args []string) {
	if len(args) < 1 {
		fmt.Println("usage: get <key>")

		return
	}

	switch r.kind {
	case kindSymbols:
		locs, err := r.symbols.Lookup(args[0])
		if err != nil {
			fmt.Println("error:", err)

			return
		}

		for _, loc := range locs {
			fmt.Printf("%d:%d:%d\n", loc.FileID, loc.Line, loc.Column)
		}

	case kindLocations:
		loc, err := parseLocation(args[0])
		if err != nil {
			fmt.Println("error:", err)

			return
		}

		sym, err := r.locations.Lookup(loc)
		if err != nil {
			fmt.Println("error:", err)

			return
		}

		fmt.Println(sym)
	}
}

func (r *repl) cmdScan(args []string) {
	limit := -1

	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Println("usage: scan [limit]")

			return
		}

		limit = n
	}

	shown := 0

	switch r.kind {
	case kindSymbols:
		for e := range r.symbols.All() {
			if limit >= 0 && shown >= limit {
				break
			}

			fmt.Printf("%s -> %v\n", e.Key, e.Value)
			shown++
		}

	case kindLocations:
		for e := range r.locations.All() {
			if limit >= 0 && shown >= limit {
				break
			}

			fmt.Printf("%d:%d:%d -> %s\n", e.Key.FileID, e.Key.Line, e.Key.Column, e.Value)
			shown++
		}
	}
}
