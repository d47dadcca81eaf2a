// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/kickoff/matchcore/internal/storage/memory/export/v1"
	"github.com/kickoff/matchcore/pkg/core"
)

// exportJSON writes the season data to a JSON file, gzipped when configured.
// Callers hold b.mu.
func (b *Backend) exportJSON() error {
	export := v1.Build(b.seasonData())

	// Build filename
	league := strings.NewReplacer(" ", "_", ":", "_", "/", "_").Replace(b.season.League)
	if league == "" {
		league = "season"
	}
	timestamp := b.season.StartTime.Format("20060102_150405")

	filename := fmt.Sprintf("%s_s%d_%s.json", league, b.season.Number, timestamp)
	if b.cfg.CompressOutput {
		filename += ".gz"
	}

	// Ensure output directory exists
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)
	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	b.lastExportMeta = core.UploadMetadata{
		League:       b.season.League,
		Season:       b.season.Number,
		ChampionID:   export.ChampionID,
		Matches:      b.summary.Matches,
		ExportedFile: filename,
	}
	return nil
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		_ = gzWriter.Close()
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return gzWriter.Close()
}
