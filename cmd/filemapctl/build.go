package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Gei0r/rtags/pkg/filemap"
	"github.com/Gei0r/rtags/pkg/symbolmap"
)

// buildFromCSV reads lines of "key,value..." from r and writes a map file
// of the requested kind. For symbols, each line is
// "symbol,fileID:line:col[;fileID:line:col...]". For locations, each line
// is "fileID:line:col,symbol".
//
// The CSV must already be sorted by key; this mirrors the core library's
// own input contract (see filemap.Builder.Put) rather than silently
// sorting on the CLI's behalf.
func buildFromCSV(k kind, mapPath string, r io.Reader, opts filemap.Options) (int, error) {
	switch k {
	case kindSymbols:
		return buildSymbolsFromCSV(mapPath, r, opts)
	case kindLocations:
		return buildLocationsFromCSV(mapPath, r, opts)
	default:
		return 0, fmt.Errorf("unknown map kind %q", k)
	}
}

func buildSymbolsFromCSV(mapPath string, r io.Reader, opts filemap.Options) (int, error) {
	b := symbolmap.NewSymbolLocationsBuilder()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		sym, locsField, ok := strings.Cut(line, ",")
		if !ok {
			return 0, fmt.Errorf("malformed line %q: want symbol,locations", line)
		}

		locs, err := parseLocationList(locsField)
		if err != nil {
			return 0, fmt.Errorf("line %q: %w", line, err)
		}

		if err := b.Put(sym, locs); err != nil {
			return 0, fmt.Errorf("line %q: %w", line, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, err
	}

	return symbolmap.WriteSymbolLocations(mapPath, b, opts)
}

func buildLocationsFromCSV(mapPath string, r io.Reader, opts filemap.Options) (int, error) {
	b := symbolmap.NewLocationSymbolBuilder()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		locField, sym, ok := strings.Cut(line, ",")
		if !ok {
			return 0, fmt.Errorf("malformed line %q: want location,symbol", line)
		}

		loc, err := parseLocation(locField)
		if err != nil {
			return 0, fmt.Errorf("line %q: %w", line, err)
		}

		if err := b.Put(loc, sym); err != nil {
			return 0, fmt.Errorf("line %q: %w", line, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return 0, err
	}

	return symbolmap.WriteLocationSymbol(mapPath, b, opts)
}

func parseLocationList(s string) ([]symbolmap.Location, error) {
	fields := strings.Split(s, ";")
	out := make([]symbolmap.Location, 0, len(fields))

	for _, f := range fields {
		loc, err := parseLocation(f)
		if err != nil {
			return nil, err
		}

		out = append(out, loc)
	}

	return out, nil
}
