package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker publish [-dry-run]")
	}

	switch os.Args[1] {
	case "publish":
		os.Exit(RunPublish(os.Args[2:]))
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
