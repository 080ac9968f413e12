package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ralt/pacrepo/internal/metadata"
	"github.com/ralt/pacrepo/internal/models"
	"github.com/ralt/pacrepo/internal/utils"
	"github.com/sirupsen/logrus"
)

const pkginfoMember = ".PKGINFO"

// LoadOptions controls how much of a package archive is read
type LoadOptions struct {
	// Files collects the archive's file list for the files database
	Files bool
}

// LoadPackage parses a pacman package archive into a record. Identity and
// descriptive fields come from .PKGINFO; the filename, compressed size and
// checksums come from the archive file, and the signature from "<path>.sig"
// when present.
func LoadPackage(path string, opts LoadOptions) (*models.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, closer, err := OpenTar(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer closer.Close()

	pkg := models.NewPackage("", "")
	found := false
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
		}

		name := strings.TrimPrefix(header.Name, "./")
		if name == pkginfoMember {
			if err := metadata.Parse(metadata.NewPkginfoParser(), pkg, tr); err != nil {
				return nil, err
			}
			found = true
			if !opts.Files {
				break
			}
			continue
		}

		if opts.Files && !strings.HasPrefix(name, ".") && name != "" {
			if header.Typeflag == tar.TypeDir && !strings.HasSuffix(name, "/") {
				name += "/"
			}
			if err := pkg.Set(models.FieldFiles, name); err != nil {
				return nil, models.ParseError(filepath.Base(path), err)
			}
		}
	}

	if !found {
		return nil, models.ParseError(filepath.Base(path),
			fmt.Errorf("%s not found: %w", pkginfoMember, models.ErrMissingRequiredField))
	}
	if err := pkg.Validate(); err != nil {
		return nil, models.ParseError(filepath.Base(path), err)
	}

	checksums, err := utils.CalculateChecksums(path)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate checksums: %w", err)
	}
	pkg.SetFileInfo(filepath.Base(path), uint64(checksums.Size), checksums.SHA256, checksums.MD5)

	sig, err := os.ReadFile(path + ".sig")
	switch {
	case err == nil:
		pkg.SetSignature(sig)
	case errors.Is(err, os.ErrNotExist):
		logrus.Debugf("No signature for %s", filepath.Base(path))
	default:
		return nil, fmt.Errorf("failed to read signature: %w", err)
	}

	return pkg, nil
}
