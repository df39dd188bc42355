package v1

import (
	"context"

	"github.com/corvus-index/corvus"
	"github.com/corvus-index/corvus/domain/repository"
)

// sourceFileMap returns source files grouped by enrichment ID string.
func sourceFileMap(ctx context.Context, client *corvus.Client, enrichmentIDs []int64) (map[string][]repository.File, error) {
	fileIDsByEnrichment, err := client.Enrichments.SourceFiles(ctx, enrichmentIDs)
	if err != nil {
		return nil, err
	}

	// The same source file commonly backs several enrichments (a snippet and
	// a chunk derived from the same function, say), so dedupe before
	// querying rather than fetching the same row once per enrichment.
	seen := make(map[int64]bool)
	var allFileIDs []int64
	for _, ids := range fileIDsByEnrichment {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				allFileIDs = append(allFileIDs, id)
			}
		}
	}

	if len(allFileIDs) == 0 {
		return map[string][]repository.File{}, nil
	}

	files, err := client.Files.Find(ctx, repository.WithIDIn(allFileIDs))
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]repository.File, len(files))
	for _, f := range files {
		byID[f.ID()] = f
	}

	result := make(map[string][]repository.File, len(fileIDsByEnrichment))
	for enrichmentID, fileIDs := range fileIDsByEnrichment {
		for _, fid := range fileIDs {
			if f, ok := byID[fid]; ok {
				result[enrichmentID] = append(result[enrichmentID], f)
			}
		}
	}

	return result, nil
}
