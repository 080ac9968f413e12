package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ralt/pacrepo/internal/metadata"
	"github.com/ralt/pacrepo/internal/models"
	"github.com/sirupsen/logrus"
)

// SplitEntryName splits a database directory name "<name>-<pkgver>-<pkgrel>"
// into the package name and its full version.
func SplitEntryName(dir string) (name, version string, err error) {
	rel := strings.LastIndexByte(dir, '-')
	if rel <= 0 {
		return "", "", fmt.Errorf("entry %q: %w", dir, models.ErrInvalidFormat)
	}
	ver := strings.LastIndexByte(dir[:rel], '-')
	if ver <= 0 || ver+1 == rel || rel+1 == len(dir) {
		return "", "", fmt.Errorf("entry %q: %w", dir, models.ErrInvalidFormat)
	}
	return dir[:ver], dir[ver+1:], nil
}

// LoadDatabase reads a repository or files database. Each entry directory
// yields one record whose desc, depends and files members are parsed into
// it in archive order. A files member without a record of its own is
// skipped.
func LoadDatabase(dbPath string) ([]*models.Package, error) {
	f, err := os.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, closer, err := OpenTar(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	defer closer.Close()

	var packages []*models.Package
	byEntry := make(map[string]*models.Package)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read database %s: %w", dbPath, err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}

		dir, member := path.Split(strings.TrimPrefix(header.Name, "./"))
		dir = strings.TrimSuffix(dir, "/")
		if dir == "" || strings.Contains(dir, "/") {
			logrus.Debugf("Skipping database member %s", header.Name)
			continue
		}

		pkg, ok := byEntry[dir]
		switch member {
		case "desc", "depends":
			if !ok {
				name, version, err := SplitEntryName(dir)
				if err != nil {
					return nil, err
				}
				pkg = models.NewPackage(name, version)
				byEntry[dir] = pkg
				packages = append(packages, pkg)
			}
		case "files":
			if !ok {
				logrus.Debugf("Skipping files member without an entry: %s", header.Name)
				continue
			}
		default:
			logrus.Debugf("Skipping unknown database member %s", header.Name)
			continue
		}

		if err := metadata.Parse(metadata.NewDescParser(), pkg, tr); err != nil {
			return nil, err
		}
	}

	return packages, nil
}
