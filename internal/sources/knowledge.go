package sources

import (
	"fmt"
	"os"

	"github.com/yildizm/PortTriage/internal/docstore"
	"github.com/yildizm/PortTriage/internal/logger"
)

// LoadKnowledge reads a knowledge base from a single file or a directory of
// .md and .txt files
func LoadKnowledge(path string, log *logger.Logger) (*docstore.KnowledgeBase, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat knowledge base: %w", err)
	}

	scanner := docstore.NewScanner()
	if log != nil {
		scanner.OnWarning(func(p string, err error) {
			log.WarnWithFields("Skipping knowledge file", []logger.Field{logger.Path(p), logger.Error(err)})
		})
	}

	if info.IsDir() {
		docs, err := scanner.ScanDirectory(path)
		if err != nil {
			return nil, fmt.Errorf("failed to scan knowledge directory: %w", err)
		}
		return docstore.FromDocuments(docs), nil
	}

	doc, err := scanner.ScanFile(path)
	if err != nil {
		return nil, err
	}
	return docstore.FromDocuments([]*docstore.Document{doc}), nil
}
