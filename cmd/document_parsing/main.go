package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"frontdesk-backend/internal/document_parsing"
)

// Builds a knowledge base seed file from handbook documents, e.g.
//
//	go run ./cmd/document_parsing -out data/knowledge.md handbook.pdf menu.html hours.md
func main() {
	out := flag.String("out", "", "write the knowledge base to this file instead of stdout")
	workers := flag.Int("workers", 4, "number of documents to convert at once")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatalf("usage: %s [-out file] [-workers n] document...", os.Args[0])
	}

	docs := document_parsing.ConvertFiles(flag.Args(), *workers)

	failed := 0
	for _, doc := range docs {
		if doc.Error != nil {
			slog.Error("error converting document", "path", doc.Path, "error", doc.Error)
			failed++
		}
	}
	if failed == len(docs) {
		log.Fatalf("no documents could be converted")
	}

	knowledge := document_parsing.JoinDocuments(docs)

	if *out == "" {
		fmt.Println(knowledge)
		return
	}
	if err := os.WriteFile(*out, []byte(knowledge+"\n"), 0o644); err != nil {
		log.Fatalf("error writing %s: %v", *out, err)
	}
	slog.Info("wrote knowledge base", "path", *out, "documents", len(docs)-failed, "failed", failed)
}
