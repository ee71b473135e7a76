// Command gendoc writes markdown reference pages for every botdash command.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/botdash/botdash-cli/cmd"
)

func main() {
	dir := flag.String("out", "docs", "directory to write the pages to")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("creating %s: %v", *dir, err)
	}
	if err := doc.GenMarkdownTree(cmd.RootCmd, *dir); err != nil {
		log.Fatalf("generating docs: %v", err)
	}
	log.Printf("wrote command reference to %s", *dir)
}
