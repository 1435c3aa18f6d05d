package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/flaneur2020/hip-diff/hipdiff/hipfile"
)

// loadArchive reads one archive, optionally drawing a progress bar on
// stderr while the file streams in. The bar tracks bytes read from disk;
// parsing happens once the whole file is in memory.
func loadArchive(path string, progress bool) (*hipfile.Archive, error) {
	if !progress {
		return hipfile.LoadFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	bar := progressbar.DefaultBytes(st.Size(), fmt.Sprintf("Loading %s", filepath.Base(path)))
	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, bar), f); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	archive, err := hipfile.Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return archive, nil
}
