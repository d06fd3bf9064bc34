// Package container selects the primary and archived logs inside a
// support archive exported by the source system.
package container

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/SteelMorgan/log4j-inspector/internal/domain"
	"github.com/klauspost/compress/zip"
)

// Entry is one file inside a container. Data reads the entry's
// uncompressed bytes and may be called more than once.
type Entry interface {
	Name() string
	Size() uint64
	Data(ctx context.Context) ([]byte, error)
}

type zipEntry struct {
	f *zip.File
}

func (e zipEntry) Name() string { return e.f.Name }

func (e zipEntry) Size() uint64 { return e.f.UncompressedSize64 }

func (e zipEntry) Data(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := e.f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open entry %s: %v", domain.ErrRead, e.f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read entry %s: %v", domain.ErrRead, e.f.Name, err)
	}
	return data, nil
}

// Entries lists the entries of a zip container in directory order.
// Directory entries are skipped.
func Entries(blob []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrContainerUnreadable, err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		entries = append(entries, zipEntry{f: f})
	}
	return entries, nil
}
