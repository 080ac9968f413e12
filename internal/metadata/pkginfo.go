package metadata

import (
	"bytes"
	"fmt"

	"github.com/ralt/pacrepo/internal/models"
	"github.com/ralt/pacrepo/internal/utils"
)

var pkginfoKeys = map[string]models.Field{
	"pkgname":     models.FieldName,
	"pkgbase":     models.FieldBase,
	"pkgver":      models.FieldVersion,
	"pkgdesc":     models.FieldDescription,
	"url":         models.FieldURL,
	"builddate":   models.FieldBuildDate,
	"packager":    models.FieldPackager,
	"size":        models.FieldISize,
	"arch":        models.FieldArch,
	"license":     models.FieldLicense,
	"replaces":    models.FieldReplaces,
	"group":       models.FieldGroups,
	"conflict":    models.FieldConflicts,
	"provides":    models.FieldProvides,
	"depend":      models.FieldDepends,
	"optdepend":   models.FieldOptDepends,
	"makedepend":  models.FieldMakeDepends,
	"checkdepend": models.FieldCheckDepends,
}

// Keys makepkg writes that have no place in a repository database
var pkginfoIgnored = map[string]bool{
	"backup":     true,
	"makepkgopt": true,
	"xdata":      true,
	"pkgtype":    true,
}

// pkginfoKey returns the .PKGINFO key that populates f
func pkginfoKey(f models.Field) string {
	for k, v := range pkginfoKeys {
		if v == f {
			return k
		}
	}
	return ""
}

// PkginfoParser parses the "key = value" format of .PKGINFO files.
// Lines starting with '#' are comments; repeated keys accumulate into list
// fields. The record is complete at end of input.
type PkginfoParser struct {
	last models.Field
}

// NewPkginfoParser returns a parser in its initial state
func NewPkginfoParser() *PkginfoParser {
	return &PkginfoParser{}
}

// LastField returns the field of the most recently parsed line
func (p *PkginfoParser) LastField() models.Field {
	return p.last
}

// Feed implements Parser
func (p *PkginfoParser) Feed(pkg *models.Package, chunk []byte) (int, error) {
	return feedLines(chunk, func(line []byte) error {
		if err := p.line(pkg, line); err != nil {
			return models.ParseError(pkg.Name, err)
		}
		return nil
	})
}

// Finish implements Parser
func (p *PkginfoParser) Finish(pkg *models.Package, rest []byte) error {
	if err := p.line(pkg, rest); err != nil {
		return models.ParseError(pkg.Name, err)
	}
	return nil
}

func (p *PkginfoParser) line(pkg *models.Package, raw []byte) error {
	line := utils.TrimBytes(raw)
	if len(line) == 0 || line[0] == '#' {
		return nil
	}

	eq := bytes.IndexByte(line, '=')
	if eq < 0 {
		return fmt.Errorf("line %q is not a key = value pair: %w", line, models.ErrMalformedSection)
	}

	key := string(utils.TrimBytes(line[:eq]))
	value := string(utils.TrimBytes(line[eq+1:]))
	if key == "" {
		return fmt.Errorf("line %q has no key: %w", line, models.ErrMalformedSection)
	}

	f, ok := pkginfoKeys[key]
	if !ok {
		if pkginfoIgnored[key] {
			return nil
		}
		return fmt.Errorf("key %q: %w", key, models.ErrUnknownField)
	}

	if err := pkg.Set(f, value); err != nil {
		return err
	}
	p.last = f
	return nil
}
