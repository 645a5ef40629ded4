package archive

import (
	"archive/tar"
	"archive/zip"
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

const (
	FormatZip = "zip"
	FormatTar = "tar"
)

// Entry is one member of a container, held in memory.
type Entry struct {
	Name  string // slash-separated, relative
	Mode  fs.FileMode
	IsDir bool
	Data  []byte
}

// Bulk is the ordered entry listing of a container.
type Bulk struct {
	Path    string
	Format  string
	Entries []Entry
}

// FormatOf returns the container format implied by a file name, or "" when
// the name is not an archive. Names ending in .zip are zip; any name
// containing .tar is tar, compressed or not.
func FormatOf(name string) string {
	base := filepath.Base(name)
	switch {
	case strings.HasSuffix(base, ".zip"):
		return FormatZip
	case strings.Contains(base, ".tar"):
		return FormatTar
	}
	return ""
}

// IsArchive reports whether name would be expanded by ExpandAll.
func IsArchive(name string) bool {
	return FormatOf(name) != ""
}

// Read loads every entry of the container at p.
func Read(p string) (*Bulk, error) {
	format := FormatOf(p)
	if format == "" {
		return nil, &FormatError{Path: p, Format: "archive", Cause: errors.New("unrecognised file extension")}
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", p, err)
	}
	defer f.Close()

	var entries []Entry
	switch format {
	case FormatZip:
		entries, err = readZip(f)
	default:
		entries, err = readTar(f)
	}
	if err != nil {
		return nil, &FormatError{Path: p, Format: format, Cause: err}
	}

	return &Bulk{Path: p, Format: format, Entries: entries}, nil
}

func readZip(f *os.File) ([]Entry, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, zf := range zr.File {
		name := cleanName(zf.Name)
		if name == "" {
			continue
		}
		if zf.FileInfo().IsDir() {
			entries = append(entries, Entry{Name: name, Mode: zf.Mode(), IsDir: true})
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: name, Mode: zf.Mode(), Data: data})
	}
	return entries, nil
}

// readTar accepts plain, gzip, bzip2 and xz tar streams, sniffing the
// compression magic rather than trusting the extension.
func readTar(f *os.File) ([]Entry, error) {
	r, closeFn, err := decompress(bufio.NewReader(f))
	if err != nil {
		return nil, err
	}
	defer closeFn()

	var entries []Entry
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := cleanName(hdr.Name)
		if name == "" {
			continue
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			entries = append(entries, Entry{Name: name, Mode: hdr.FileInfo().Mode(), IsDir: true})
		case tar.TypeReg, tar.TypeRegA:
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, err
			}
			entries = append(entries, Entry{Name: name, Mode: hdr.FileInfo().Mode(), Data: data})
		default:
			// links and devices are not submission content
			continue
		}
	}
	if len(entries) == 0 {
		return nil, errors.New("no entries")
	}
	return entries, nil
}

func decompress(br *bufio.Reader) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	magic, _ := br.Peek(len(xzMagic))
	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return gz, gz.Close, nil
	case bytes.HasPrefix(magic, bzip2Magic):
		return bzip2.NewReader(br), noop, nil
	case bytes.HasPrefix(magic, xzMagic):
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, nil, err
		}
		return xr, noop, nil
	}
	return br, noop, nil
}

func cleanName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimSuffix(name, "/")
	if name == "." {
		return ""
	}
	return name
}

// Target returns the on-disk location of an entry name under dest.
func Target(dest, name string) (string, error) {
	clean := path.Clean(name)
	if clean == "." || clean == ".." || path.IsAbs(clean) || strings.HasPrefix(clean, "../") {
		return "", &UnsafePathError{Entry: name}
	}
	return filepath.Join(dest, filepath.FromSlash(clean)), nil
}

// Write materializes the given entries under dest, preserving relative paths.
// A nil entries slice writes every entry of the bulk.
func (b *Bulk) Write(dest string, entries []Entry) error {
	if entries == nil {
		entries = b.Entries
	}
	for _, e := range entries {
		target, err := Target(dest, e.Name)
		if err != nil {
			return err
		}
		if e.IsDir {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		mode := e.Mode.Perm()
		if mode == 0 {
			mode = 0o644
		}
		if err := os.WriteFile(target, e.Data, mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
	}
	return nil
}

// Extract writes every entry of container under dest and removes container.
func Extract(container, dest string) error {
	bulk, err := Read(container)
	if err != nil {
		return err
	}
	if err := bulk.Write(dest, nil); err != nil {
		var unsafe *UnsafePathError
		if errors.As(err, &unsafe) {
			return &FormatError{Path: container, Format: bulk.Format, Cause: err}
		}
		return err
	}
	if err := os.Remove(container); err != nil {
		return fmt.Errorf("failed to remove %s: %w", container, err)
	}
	return nil
}

// ExpandAll extracts every archive sitting directly in dir into dir. Archives
// that cannot be decoded are left in place and returned as skipped.
func ExpandAll(dir string) (expanded []string, skipped []*FormatError, err error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	for _, item := range items {
		if item.IsDir() || !IsArchive(item.Name()) {
			continue
		}
		p := filepath.Join(dir, item.Name())
		if err := Extract(p, dir); err != nil {
			var fe *FormatError
			if errors.As(err, &fe) {
				skipped = append(skipped, fe)
				continue
			}
			return expanded, skipped, err
		}
		expanded = append(expanded, p)
	}
	return expanded, skipped, nil
}
