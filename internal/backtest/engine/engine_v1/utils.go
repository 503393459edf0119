package engine

import (
	"fmt"
	"path/filepath"
	"strings"
)

// getResultFolder returns <resultsFolder>/<symbol>_<strategy>_<runID>.
// Path separators and spaces in the symbol are replaced so every run stays a
// single directory below the results folder.
func getResultFolder(resultsFolder string, symbol string, strategyName string, runID string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", " ", "_")

	return filepath.Join(resultsFolder, fmt.Sprintf("%s_%s_%s", replacer.Replace(symbol), strategyName, runID))
}
