package models

import (
	"fmt"
	"slices"

	"github.com/ralt/pacrepo/internal/utils"
)

// Package represents a software package with its metadata
type Package struct {
	// Identity
	Name    string `json:"name"`
	Version string `json:"version"`

	// Scalars
	Base            string `json:"base,omitempty"`
	Filename        string `json:"filename,omitempty"`
	Description     string `json:"desc,omitempty"`
	URL             string `json:"url,omitempty"`
	Architecture    string `json:"arch,omitempty"`
	Packager        string `json:"packager,omitempty"`
	CompressedSize  uint64 `json:"csize,omitempty"`
	InstalledSize   uint64 `json:"isize,omitempty"`
	MD5Sum          string `json:"md5sum,omitempty"`
	SHA256Sum       string `json:"sha256sum,omitempty"`
	Base64Signature string `json:"pgpsig,omitempty"`
	BuildDate       int64  `json:"builddate,omitempty"`

	// Lists, in source order
	Groups       []string `json:"groups,omitempty"`
	Licenses     []string `json:"licenses,omitempty"`
	Replaces     []string `json:"replaces,omitempty"`
	Depends      []string `json:"depends,omitempty"`
	Conflicts    []string `json:"conflicts,omitempty"`
	Provides     []string `json:"provides,omitempty"`
	OptDepends   []string `json:"optdepends,omitempty"`
	MakeDepends  []string `json:"makedepends,omitempty"`
	CheckDepends []string `json:"checkdepends,omitempty"`
	Files        []string `json:"files,omitempty"`

	// Path is where the archive was loaded from. It is not part of the
	// record and is empty for records read from a database.
	Path string `json:"-"`

	// set tracks which scalar fields hold a value
	set uint64
}

// NewPackage creates an empty record with its identity pre-seeded. Either
// part may be empty when the identity is expected from the metadata itself.
func NewPackage(name, version string) *Package {
	p := &Package{
		Name:         name,
		Version:      version,
		Groups:       []string{},
		Licenses:     []string{},
		Replaces:     []string{},
		Depends:      []string{},
		Conflicts:    []string{},
		Provides:     []string{},
		OptDepends:   []string{},
		MakeDepends:  []string{},
		CheckDepends: []string{},
		Files:        []string{},
	}
	if name != "" {
		p.mark(FieldName)
	}
	if version != "" {
		p.mark(FieldVersion)
	}
	return p
}

func (p *Package) mark(f Field) {
	p.set |= 1 << uint(f)
}

// Has reports whether a scalar field holds a value, or whether a list
// field has at least one entry.
func (p *Package) Has(f Field) bool {
	if f.IsList() {
		return len(*p.list(f)) > 0
	}
	return p.set&(1<<uint(f)) != 0
}

// Set stores one value for field f. List fields append; scalar fields
// accept exactly one value. NAME and VERSION are validated against the
// pre-seeded identity instead of overwriting it.
//
// An empty value for a text or list field is dropped and the field stays
// unset. Numeric fields still reject it.
func (p *Package) Set(f Field, value string) error {
	if value == "" && (f.IsList() || p.scalar(f) != nil) {
		return nil
	}

	if f.IsList() {
		l := p.list(f)
		*l = append(*l, value)
		return nil
	}

	if f.IsIdentity() {
		return p.setIdentity(f, value)
	}

	if p.Has(f) {
		return fmt.Errorf("%%%s%%: %w", f, ErrDuplicateField)
	}

	switch f {
	case FieldCSize, FieldISize:
		v, err := utils.ParseUnsigned(value)
		if err != nil {
			return fmt.Errorf("%%%s%% %q: %w", f, value, err)
		}
		if f == FieldCSize {
			p.CompressedSize = v
		} else {
			p.InstalledSize = v
		}
	case FieldBuildDate:
		v, err := utils.ParseTimestamp(value)
		if err != nil {
			return fmt.Errorf("%%%s%% %q: %w", f, value, err)
		}
		p.BuildDate = v
	default:
		s := p.scalar(f)
		if s == nil {
			return fmt.Errorf("field %d: %w", int(f), ErrUnknownField)
		}
		*s = value
	}

	p.mark(f)
	return nil
}

func (p *Package) setIdentity(f Field, value string) error {
	s := p.scalar(f)
	if !p.Has(f) {
		*s = value
		p.mark(f)
		return nil
	}
	if *s != value {
		return fmt.Errorf("%%%s%% %q, expected %q: %w", f, value, *s, ErrMismatchedField)
	}
	return nil
}

func (p *Package) scalar(f Field) *string {
	switch f {
	case FieldName:
		return &p.Name
	case FieldVersion:
		return &p.Version
	case FieldBase:
		return &p.Base
	case FieldFilename:
		return &p.Filename
	case FieldDescription:
		return &p.Description
	case FieldURL:
		return &p.URL
	case FieldArch:
		return &p.Architecture
	case FieldPackager:
		return &p.Packager
	case FieldMD5Sum:
		return &p.MD5Sum
	case FieldSHA256Sum:
		return &p.SHA256Sum
	case FieldPGPSig:
		return &p.Base64Signature
	default:
		return nil
	}
}

func (p *Package) list(f Field) *[]string {
	switch f {
	case FieldGroups:
		return &p.Groups
	case FieldLicense:
		return &p.Licenses
	case FieldReplaces:
		return &p.Replaces
	case FieldDepends:
		return &p.Depends
	case FieldConflicts:
		return &p.Conflicts
	case FieldProvides:
		return &p.Provides
	case FieldOptDepends:
		return &p.OptDepends
	case FieldMakeDepends:
		return &p.MakeDepends
	case FieldCheckDepends:
		return &p.CheckDepends
	case FieldFiles:
		return &p.Files
	default:
		panic(fmt.Sprintf("models: %s is not a list field", f))
	}
}

// List returns the values of a list field
func (p *Package) List(f Field) []string {
	return *p.list(f)
}

// SetFileInfo records the attributes derived from the archive file itself
func (p *Package) SetFileInfo(filename string, size uint64, sha256, md5 string) {
	p.Filename = filename
	p.mark(FieldFilename)
	p.CompressedSize = size
	p.mark(FieldCSize)
	if sha256 != "" {
		p.SHA256Sum = sha256
		p.mark(FieldSHA256Sum)
	}
	if md5 != "" {
		p.MD5Sum = md5
		p.mark(FieldMD5Sum)
	}
}

// SetSignature stores a detached signature as base64 text
func (p *Package) SetSignature(sig []byte) {
	p.Base64Signature = utils.Base64Encode(sig)
	p.mark(FieldPGPSig)
}

// Validate checks that the identity fields are present
func (p *Package) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%%NAME%%: %w", ErrMissingRequiredField)
	}
	if p.Version == "" {
		return fmt.Errorf("%%VERSION%%: %w", ErrMissingRequiredField)
	}
	return nil
}

// EntryName returns the database directory name, "<name>-<version>"
func (p *Package) EntryName() string {
	return utils.Join(p.Name, "-", p.Version)
}

// Equal reports whether two records hold the same values, including which
// scalar fields are set.
func (p *Package) Equal(o *Package) bool {
	if p == nil || o == nil {
		return p == o
	}

	return p.set == o.set &&
		p.Name == o.Name &&
		p.Version == o.Version &&
		p.Base == o.Base &&
		p.Filename == o.Filename &&
		p.Description == o.Description &&
		p.URL == o.URL &&
		p.Architecture == o.Architecture &&
		p.Packager == o.Packager &&
		p.CompressedSize == o.CompressedSize &&
		p.InstalledSize == o.InstalledSize &&
		p.MD5Sum == o.MD5Sum &&
		p.SHA256Sum == o.SHA256Sum &&
		p.Base64Signature == o.Base64Signature &&
		p.BuildDate == o.BuildDate &&
		slices.Equal(p.Groups, o.Groups) &&
		slices.Equal(p.Licenses, o.Licenses) &&
		slices.Equal(p.Replaces, o.Replaces) &&
		slices.Equal(p.Depends, o.Depends) &&
		slices.Equal(p.Conflicts, o.Conflicts) &&
		slices.Equal(p.Provides, o.Provides) &&
		slices.Equal(p.OptDepends, o.OptDepends) &&
		slices.Equal(p.MakeDepends, o.MakeDepends) &&
		slices.Equal(p.CheckDepends, o.CheckDepends) &&
		slices.Equal(p.Files, o.Files)
}
