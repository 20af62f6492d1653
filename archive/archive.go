// Package archive persists per-sentence word probability matrices as a
// single compressed artifact: a zip file with one deflate entry per
// sentence, named by the sentence's decimal index and containing the matrix
// as a 2-D JSON array.
package archive

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const entrySuffix = ".json"

// Write stores matrices[i] under entry "<i>.json" at path.
func Write(path string, matrices [][][]float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer file.Close()

	zw := zip.NewWriter(file)
	for i, matrix := range matrices {
		entry, err := zw.Create(strconv.Itoa(i) + entrySuffix)
		if err != nil {
			return fmt.Errorf("failed to create entry for sentence %d: %w", i, err)
		}
		data, err := json.Marshal(matrix)
		if err != nil {
			return fmt.Errorf("failed to encode sentence %d: %w", i, err)
		}
		if _, err := entry.Write(data); err != nil {
			return fmt.Errorf("failed to write sentence %d: %w", i, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// Read loads an artifact back into a map keyed by sentence index.
func Read(path string) (map[int][][]float64, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	out := make(map[int][][]float64, len(zr.File))
	for _, f := range zr.File {
		name := strings.TrimSuffix(f.Name, entrySuffix)
		idx, err := strconv.Atoi(name)
		if err != nil {
			return nil, fmt.Errorf("unexpected entry %q in archive", f.Name)
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open entry %q: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read entry %q: %w", f.Name, err)
		}

		var matrix [][]float64
		if err := json.Unmarshal(data, &matrix); err != nil {
			return nil, fmt.Errorf("failed to decode entry %q: %w", f.Name, err)
		}
		out[idx] = matrix
	}
	return out, nil
}
