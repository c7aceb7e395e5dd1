package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.2.0-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("fwpack %s\n", Version)
			fmt.Println("PlatformIO build packaging for web flashers")
			return
		case "--help", "-h":
			printPackHelp()
			return
		}
	}

	if err := runPack(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
