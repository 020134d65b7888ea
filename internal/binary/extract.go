package binary

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/mjfwebb/neo4j-mcp-installer/internal/platform"
)

// fallbackNames are accepted when no entry matches the target's binary
// name, covering archives that ship the other platform's file name.
var fallbackNames = []string{platform.ProductName, platform.ProductName + ".exe"}

// Extractor pulls the neo4j-mcp executable out of a release archive
type Extractor struct{}

// NewExtractor creates a new extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract writes the binary found in archivePath to outPath.
//
// The archive format follows target.ArchiveExt. Among regular files, an
// entry whose base name equals target.BinaryName() wins; otherwise the
// first entry named "neo4j-mcp" or "neo4j-mcp.exe" is used. The binary is
// written to outPath+".tmp" and renamed over outPath, then marked
// executable.
func (e *Extractor) Extract(archivePath, outPath string, target platform.Target) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	wanted := target.BinaryName()

	var err error
	switch target.ArchiveExt {
	case platform.ExtTarGz:
		err = e.extractTarGz(archivePath, tmpPath, wanted)
	case platform.ExtZip:
		err = e.extractZip(archivePath, tmpPath, wanted)
	default:
		return &UnsupportedArchiveFormatError{Archive: filepath.Base(archivePath), Extension: target.ArchiveExt}
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return SetExecutable(outPath)
}

// extractTarGz makes two passes: the first picks the entry, the second
// streams it out. A tar stream cannot be rewound to an earlier fallback.
func (e *Extractor) extractTarGz(archivePath, destPath, wanted string) error {
	var names []string
	err := walkTarGz(archivePath, func(header *tar.Header, _ io.Reader) (bool, error) {
		if header.Typeflag == tar.TypeReg {
			names = append(names, header.Name)
		}
		return false, nil
	})
	if err != nil {
		return err
	}

	chosen, ok := chooseEntry(names, wanted)
	if !ok {
		return &BinaryNotFoundError{Archive: filepath.Base(archivePath), Wanted: wanted}
	}

	found := false
	err = walkTarGz(archivePath, func(header *tar.Header, r io.Reader) (bool, error) {
		if header.Typeflag != tar.TypeReg || header.Name != chosen {
			return false, nil
		}
		found = true
		return true, writeFile(destPath, r)
	})
	if err != nil {
		return err
	}
	if !found {
		return &BinaryNotFoundError{Archive: filepath.Base(archivePath), Wanted: wanted}
	}
	return nil
}

// walkTarGz calls fn for each entry until fn returns stop or an error.
func walkTarGz(archivePath string, fn func(header *tar.Header, r io.Reader) (stop bool, err error)) error {
	archiveFile, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer archiveFile.Close()

	gzipReader, err := gzip.NewReader(archiveFile)
	if err != nil {
		return fmt.Errorf("create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	tarReader := tar.NewReader(gzipReader)
	for {
		header, err := tarReader.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read tar header: %w", err)
		}

		stop, err := fn(header, tarReader)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

func (e *Extractor) extractZip(archivePath, destPath, wanted string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	var names []string
	byName := make(map[string]*zip.File)
	for _, f := range r.File {
		if !f.Mode().IsRegular() {
			continue
		}
		if _, dup := byName[f.Name]; !dup {
			names = append(names, f.Name)
			byName[f.Name] = f
		}
	}

	chosen, ok := chooseEntry(names, wanted)
	if !ok {
		return &BinaryNotFoundError{Archive: filepath.Base(archivePath), Wanted: wanted}
	}

	rc, err := byName[chosen].Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", chosen, err)
	}
	defer rc.Close()

	return writeFile(destPath, rc)
}

// chooseEntry applies the binary discovery rules to archive entry names.
func chooseEntry(names []string, wanted string) (string, bool) {
	for _, name := range names {
		if entryBase(name) == wanted {
			return name, true
		}
	}
	for _, name := range names {
		base := entryBase(name)
		for _, fallback := range fallbackNames {
			if base == fallback {
				return name, true
			}
		}
	}
	return "", false
}

// entryBase returns the last element of an archive entry name. Archive
// names use forward slashes, but some Windows tools write backslashes.
func entryBase(name string) string {
	base := path.Base(filepath.ToSlash(name))
	if i := lastBackslash(base); i >= 0 {
		base = base[i+1:]
	}
	return base
}

func lastBackslash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\\' {
			return i
		}
	}
	return -1
}

func writeFile(destPath string, r io.Reader) error {
	outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	if err := copyChunked(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("write file: %w", err)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}
	return nil
}

// SetExecutable adds the execute bits for owner, group and other to the
// file's current mode. It is a no-op on Windows.
func SetExecutable(path string) error {
	if runtime.GOOS == "windows" {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("set executable: %w", err)
	}

	if err := os.Chmod(path, info.Mode().Perm()|0111); err != nil {
		return fmt.Errorf("set executable: %w", err)
	}
	return nil
}
