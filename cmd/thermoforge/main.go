// thermoforge bakes thermal fields for a scene file and queries them.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "bake":
		err = cmdBake(args)
	case "query", "q":
		err = cmdQuery(args)
	case "info":
		err = cmdInfo(args)
	case "export", "x":
		err = cmdExport(args)
	case "history":
		err = cmdHistory(args)
	case "sources":
		err = cmdSources(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`thermoforge - baked thermal fields for 3D scenes

Usage:
  thermoforge <command> [options] <scene.yaml>

Commands:
  bake      Bake every volume (or -volume NAME) and store the fields
  query     Temperature at -x -y -z for -at TIME (RFC3339, default now)
  info      List volumes with their grids and channel statistics
  export    Write a stored field as CSV or a heatmap image
  history   List stored bakes, optionally pruning old ones
  sources   List heat sources and their contribution at a point

Shared options:
  -config PATH   Config file (default ./thermoforge.yaml)
  -db PATH       Field database (overrides storage.database_path)
  -cell N        Default cell size in world units
  -weather A     Weather alpha for queries, 0 clear .. 1 overcast
  -debug         Debug logging

Examples:
  thermoforge bake -db fields.db house.yaml
  thermoforge query -db fields.db -x 120 -y 40 -z 90 -at 2024-01-15T06:00:00Z house.yaml
  thermoforge export -db fields.db -volume house -format png -channel indoor -z 2 house.yaml
  thermoforge history -db fields.db -prune 3 house.yaml`)
}
