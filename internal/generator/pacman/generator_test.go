package pacman

import (
	"archive/tar"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ralt/pacrepo/internal/archive"
	"github.com/ralt/pacrepo/internal/index"
	"github.com/ralt/pacrepo/internal/models"
	"github.com/ralt/pacrepo/internal/utils"
)

// fakeSigner prefixes the signed data so tests can check what was signed
type fakeSigner struct{}

func (fakeSigner) SignDetached(data []byte) ([]byte, error) {
	return append([]byte("sig:"), data[:4]...), nil
}

func (fakeSigner) GetPublicKey() ([]byte, error) {
	return []byte("-----BEGIN PGP PUBLIC KEY BLOCK-----\n"), nil
}

func (fakeSigner) KeyID() string {
	return "0123456789ABCDEF"
}

func testPackage(t *testing.T, dir, name, version string) *models.Package {
	t.Helper()

	pkg := models.NewPackage(name, version)
	pkg.Set(models.FieldArch, "x86_64")
	pkg.Set(models.FieldDescription, "Package "+name)
	pkg.Set(models.FieldISize, "4096")
	pkg.Set(models.FieldBuildDate, "1700000000")
	pkg.Set(models.FieldDepends, "glibc")
	pkg.Set(models.FieldFiles, "usr/")
	pkg.Set(models.FieldFiles, "usr/bin/"+name)

	filename := name + "-" + version + "-x86_64.pkg.tar.zst"
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte("dummy "+name), 0644); err != nil {
		t.Fatalf("Failed to write package: %v", err)
	}

	sums, err := utils.CalculateChecksums(path)
	if err != nil {
		t.Fatalf("Failed to checksum package: %v", err)
	}
	pkg.SetFileInfo(filename, uint64(sums.Size), sums.SHA256, sums.MD5)
	pkg.Path = path
	return pkg
}

func readMembers(t *testing.T, path string) map[string]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()

	tr, closer, err := archive.OpenTar(f)
	if err != nil {
		t.Fatalf("Failed to open tar: %v", err)
	}
	defer closer.Close()

	members := make(map[string]string)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Failed to read tar: %v", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			members[hdr.Name] = ""
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			t.Fatalf("Failed to read member: %v", err)
		}
		members[hdr.Name] = string(data)
	}
	return members
}

func TestGenerateDatabase(t *testing.T) {
	srcDir := t.TempDir()
	packages := []*models.Package{
		testPackage(t, srcDir, "pkg1", "1.0-1"),
		testPackage(t, srcDir, "pkg2", "2.0-1"),
	}

	dbData, err := generateDatabase(packages, utils.CompressionZstd, false)
	if err != nil {
		t.Fatalf("Failed to generate database: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.db")
	os.WriteFile(path, dbData, 0644)
	members := readMembers(t, path)

	for _, name := range []string{"pkg1-1.0-1/", "pkg1-1.0-1/desc", "pkg2-2.0-1/", "pkg2-2.0-1/desc"} {
		if _, ok := members[name]; !ok {
			t.Errorf("Database missing %s", name)
		}
	}
	if _, ok := members["pkg1-1.0-1/files"]; ok {
		t.Error("Sync database should not carry files entries")
	}

	desc := members["pkg1-1.0-1/desc"]
	if !strings.HasPrefix(desc, "%FILENAME%\npkg1-1.0-1-x86_64.pkg.tar.zst\n\n%NAME%\npkg1\n\n") {
		t.Errorf("Unexpected desc start:\n%s", desc)
	}
	if !strings.Contains(desc, "%DEPENDS%\nglibc\n\n") {
		t.Errorf("desc missing dependencies:\n%s", desc)
	}
}

func TestGenerateUnsigned(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	idx := index.New()
	idx.Insert(testPackage(t, srcDir, "test-pkg", "1.0-1"))

	config := &models.RepositoryConfig{
		OutputDir:   outDir,
		RepoName:    "test-repo",
		Compression: "zst",
	}

	if err := NewGenerator(nil).Generate(context.Background(), config, idx); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dbTarPath := filepath.Join(outDir, "test-repo.db.tar.zst")
	dbTarInfo, err := os.Stat(dbTarPath)
	if err != nil {
		t.Fatalf("Database not created: %v", err)
	}

	dbInfo, err := os.Stat(filepath.Join(outDir, "test-repo.db"))
	if err != nil {
		t.Fatalf("Database .db file not created: %v", err)
	}
	if dbInfo.Size() != dbTarInfo.Size() || dbInfo.Size() == 0 {
		t.Errorf(".db file size (%d) doesn't match .db.tar.zst size (%d)", dbInfo.Size(), dbTarInfo.Size())
	}

	for _, unexpected := range []string{"test-repo.db.tar.zst.sig", "test-repo.pub", "test-repo.files"} {
		if _, err := os.Stat(filepath.Join(outDir, unexpected)); !os.IsNotExist(err) {
			t.Errorf("%s should not exist", unexpected)
		}
	}

	if _, err := os.Stat(filepath.Join(outDir, "test-pkg-1.0-1-x86_64.pkg.tar.zst")); err != nil {
		t.Errorf("Package file not copied: %v", err)
	}
}

func TestGenerateSignedWithFiles(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	pkg := testPackage(t, srcDir, "signed", "1:2.0-3")
	pkg.SetSignature([]byte("package signature"))

	idx := index.New()
	idx.Insert(pkg)

	config := &models.RepositoryConfig{
		OutputDir:   outDir,
		RepoName:    "Signed Repo",
		Compression: "xz",
		Files:       true,
	}

	if err := NewGenerator(fakeSigner{}).Generate(context.Background(), config, idx); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, name := range []string{
		"signed-repo.db.tar.xz", "signed-repo.db.tar.xz.sig",
		"signed-repo.db", "signed-repo.db.sig",
		"signed-repo.files.tar.xz", "signed-repo.files.tar.xz.sig",
		"signed-repo.files", "signed-repo.files.sig",
		"signed-repo.pub",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}

	sig, err := os.ReadFile(filepath.Join(outDir, "signed-1:2.0-3-x86_64.pkg.tar.zst.sig"))
	if err != nil {
		t.Fatalf("Package signature not written: %v", err)
	}
	if string(sig) != "package signature" {
		t.Errorf("Unexpected package signature %q", sig)
	}

	dbSig, _ := os.ReadFile(filepath.Join(outDir, "signed-repo.db.sig"))
	if !bytes.HasPrefix(dbSig, []byte("sig:")) {
		t.Errorf("Unexpected database signature %q", dbSig)
	}

	members := readMembers(t, filepath.Join(outDir, "signed-repo.files"))
	if members["signed-1:2.0-3/files"] != "%FILES%\nusr/\nusr/bin/signed\n\n" {
		t.Errorf("Unexpected files entry %q", members["signed-1:2.0-3/files"])
	}
	if !strings.Contains(members["signed-1:2.0-3/desc"], "%PGPSIG%\n"+pkg.Base64Signature+"\n") {
		t.Errorf("desc missing PGPSIG:\n%s", members["signed-1:2.0-3/desc"])
	}
}

func TestGenerateAndReload(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()

	idx := index.New()
	originals := map[string]*models.Package{}
	for _, p := range []*models.Package{
		testPackage(t, srcDir, "zlib", "1:1.3-1"),
		testPackage(t, srcDir, "acl", "2.3.1-3"),
		testPackage(t, srcDir, "bash", "5.2.021-1"),
	} {
		originals[p.Name] = p
		idx.Insert(p)
	}

	config := &models.RepositoryConfig{
		OutputDir:   outDir,
		RepoName:    "core",
		Compression: "gz",
		Files:       true,
	}

	gen := NewGenerator(nil)
	if err := gen.Generate(context.Background(), config, idx); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	reloaded, err := gen.ParseExistingMetadata(config)
	if err != nil {
		t.Fatalf("ParseExistingMetadata failed: %v", err)
	}
	if len(reloaded) != 3 {
		t.Fatalf("Expected 3 packages, got %d", len(reloaded))
	}

	expectedOrder := []string{"acl", "bash", "zlib"}
	for i, pkg := range reloaded {
		if pkg.Name != expectedOrder[i] {
			t.Errorf("Position %d: expected %s, got %s", i, expectedOrder[i], pkg.Name)
		}
		if !pkg.Equal(originals[pkg.Name]) {
			t.Errorf("%s does not survive the round trip:\n%+v\n%+v", pkg.Name, originals[pkg.Name], pkg)
		}
	}

	// Without the files database the file lists are not reloaded
	config.Files = false
	reloaded, err = gen.ParseExistingMetadata(config)
	if err != nil {
		t.Fatalf("ParseExistingMetadata failed: %v", err)
	}
	if len(reloaded[0].Files) != 0 {
		t.Errorf("Sync database should not carry files: %v", reloaded[0].Files)
	}
}

func TestParseExistingMetadataMissing(t *testing.T) {
	config := &models.RepositoryConfig{OutputDir: t.TempDir(), RepoName: "none"}
	if _, err := NewGenerator(nil).ParseExistingMetadata(config); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected os.ErrNotExist, got %v", err)
	}
}

func TestGenerateCancelled(t *testing.T) {
	idx := index.New()
	idx.Insert(testPackage(t, t.TempDir(), "pkg", "1-1"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := &models.RepositoryConfig{OutputDir: t.TempDir(), RepoName: "r", Compression: "zst"}
	if err := NewGenerator(nil).Generate(ctx, config, idx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestValidatePackages(t *testing.T) {
	gen := &Generator{}

	valid := func() *models.Package {
		pkg := models.NewPackage("valid-pkg", "1.0-1")
		pkg.Set(models.FieldArch, "x86_64")
		pkg.Set(models.FieldFilename, "valid-pkg-1.0-1-x86_64.pkg.tar.zst")
		return pkg
	}

	if err := gen.ValidatePackages([]*models.Package{valid()}); err != nil {
		t.Errorf("Valid package failed validation: %v", err)
	}

	noVersion := models.NewPackage("valid-pkg", "")
	noVersion.Set(models.FieldArch, "x86_64")
	noVersion.Set(models.FieldFilename, "valid-pkg-1.0-1-x86_64.pkg.tar.zst")
	if err := gen.ValidatePackages([]*models.Package{noVersion}); !errors.Is(err, models.ErrMissingRequiredField) {
		t.Errorf("Package with missing version should fail validation, got %v", err)
	}

	noArch := models.NewPackage("valid-pkg", "1.0-1")
	noArch.Set(models.FieldFilename, "valid-pkg-1.0-1-x86_64.pkg.tar.zst")
	if err := gen.ValidatePackages([]*models.Package{noArch}); err == nil {
		t.Error("Package with missing architecture should fail validation")
	}

	badName := valid()
	badName.Filename = "invalid.tar.gz"
	if err := gen.ValidatePackages([]*models.Package{badName}); err == nil {
		t.Error("Package with invalid filename should fail validation")
	}
}

func TestSanitizeRepoName(t *testing.T) {
	cases := map[string]string{
		"core":        "core",
		"My Repo":     "my-repo",
		"extra_test":  "extra_test",
		"weird/name!": "weird-name-",
	}
	for input, expected := range cases {
		if got := sanitizeRepoName(input); got != expected {
			t.Errorf("%q: expected %q, got %q", input, expected, got)
		}
	}
}
