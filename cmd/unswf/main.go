package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "info":
		err = cmdInfo(os.Args[2:])
	case "tags":
		err = cmdTags(os.Args[2:])
	case "shapes":
		err = cmdShapes(os.Args[2:])
	case "display":
		err = cmdDisplay(os.Args[2:])
	case "abc":
		err = cmdABC(os.Args[2:])
	case "scene":
		err = cmdScene(os.Args[2:])
	case "graph":
		err = cmdGraph(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `unswf — legacy movie container decoder

Usage:
  unswf info    --in <path> [--json]               Print header and stage info
  unswf tags    --in <path> [--out <dir>]          List tag records
  unswf shapes  --in <path> [--out <dir>]          Dump decoded shape definitions
  unswf display --in <path> [--out <dir>]          Display list left after all placements
  unswf abc     --in <path> [--json] [--out <dir>] Decode embedded bytecode modules
  unswf scene   --in <path> [--json] [--out <dir>] Translate shapes and placements to render commands
  unswf graph   --in <path> [--out <dir>]          Character reference graph as DOT

Flags:
  --in <path>        Path to movie file
  --out <dir>        Output directory
  --strict           Fail acceptance checks instead of recording diagnostics
  --max-tags <n>     Tag walker record cap
  --max-count <n>    Table and path element cap
`)
}
