package document_parsing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type ConvertedDocument struct {
	Path     string
	Markdown string
	Error    error
}

func runInPool[In any, Out any](worker func(In) Out, inputs []In, maxWorkers int) []Out {
	results := make([]Out, len(inputs))
	workers := min(len(inputs), max(maxWorkers, 1))

	queue := make(chan int, len(inputs))
	for i := range inputs {
		queue <- i
	}
	close(queue)

	wg := sync.WaitGroup{}
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for next := range queue {
				results[next] = worker(inputs[next])
			}
		}()
	}
	wg.Wait()

	return results
}

// ConvertFiles converts each file to markdown with up to maxWorkers files in
// flight. Results are in the same order as paths.
func ConvertFiles(paths []string, maxWorkers int) []ConvertedDocument {
	return runInPool(func(path string) ConvertedDocument {
		contents, err := os.ReadFile(path)
		if err != nil {
			return ConvertedDocument{Path: path, Error: fmt.Errorf("error reading %s: %w", path, err)}
		}
		text, err := ToMarkdown(filepath.Base(path), contents)
		if err != nil {
			return ConvertedDocument{Path: path, Error: err}
		}
		return ConvertedDocument{Path: path, Markdown: strings.TrimSpace(text)}
	}, paths, maxWorkers)
}

// JoinDocuments concatenates converted documents into a single knowledge base,
// skipping the ones that failed or came out empty.
func JoinDocuments(docs []ConvertedDocument) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Error == nil && doc.Markdown != "" {
			parts = append(parts, doc.Markdown)
		}
	}
	return strings.Join(parts, "\n\n")
}
