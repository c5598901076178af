package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "history":
			historyCmd(os.Args[2:])
			return
		case "seed":
			seedCmd(os.Args[2:])
			return
		case "meta":
			metaCmd(os.Args[2:])
			return
		case "stats":
			statsCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: admin history|seed|meta|stats [flags]")
	os.Exit(2)
}
