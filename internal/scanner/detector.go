package scanner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/pacrepo/internal/utils"
)

// archiveSuffixes maps the accepted archive suffixes to the codec their
// content must carry
var archiveSuffixes = map[string]utils.Compression{
	".tar":     utils.CompressionNone,
	".tar.zst": utils.CompressionZstd,
	".tar.xz":  utils.CompressionXZ,
	".tar.gz":  utils.CompressionGzip,
	".tar.lz4": utils.CompressionLZ4,
	".tar.bz2": utils.CompressionBz2,
}

// splitArchiveName classifies basename by its suffix
func splitArchiveName(basename string) (PackageType, utils.Compression) {
	for suffix, c := range archiveSuffixes {
		if strings.HasSuffix(basename, ".pkg"+suffix) {
			return TypePackage, c
		}
		if strings.HasSuffix(basename, ".db"+suffix) || strings.HasSuffix(basename, ".files"+suffix) {
			return TypeDatabase, c
		}
	}
	return TypeUnknown, utils.CompressionNone
}

// DetectPackageType determines the file type from its name and checks the
// leading bytes against the codec the name announces. Signatures are never
// packages.
func DetectPackageType(path string) (PackageType, error) {
	basename := filepath.Base(path)
	if strings.HasSuffix(basename, ".sig") {
		return TypeUnknown, nil
	}

	pt, expected := splitArchiveName(basename)
	if pt == TypeUnknown {
		return TypeUnknown, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return TypeUnknown, err
	}
	defer f.Close()

	header := make([]byte, 512)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return TypeUnknown, err
	}

	if actual := utils.DetectCompression(header[:n]); actual != expected {
		return pt, &MismatchError{Path: path, Expected: expected, Actual: actual}
	}
	return pt, nil
}

// MismatchError reports an archive whose content does not match its suffix
type MismatchError struct {
	Path     string
	Expected utils.Compression
	Actual   utils.Compression
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s is named for %s but holds %s data", e.Path, e.Expected, e.Actual)
}
