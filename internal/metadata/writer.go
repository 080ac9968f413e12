package metadata

import (
	"bufio"
	"io"
	"strconv"

	"github.com/ralt/pacrepo/internal/models"
)

// Field order of a database desc entry
var descOrder = []models.Field{
	models.FieldFilename,
	models.FieldName,
	models.FieldBase,
	models.FieldVersion,
	models.FieldDescription,
	models.FieldGroups,
	models.FieldCSize,
	models.FieldISize,
	models.FieldMD5Sum,
	models.FieldSHA256Sum,
	models.FieldPGPSig,
	models.FieldURL,
	models.FieldLicense,
	models.FieldArch,
	models.FieldBuildDate,
	models.FieldPackager,
	models.FieldReplaces,
	models.FieldDepends,
	models.FieldConflicts,
	models.FieldProvides,
	models.FieldOptDepends,
	models.FieldMakeDepends,
	models.FieldCheckDepends,
}

// Field order of .PKGINFO as makepkg writes it
var pkginfoOrder = []models.Field{
	models.FieldName,
	models.FieldBase,
	models.FieldVersion,
	models.FieldDescription,
	models.FieldURL,
	models.FieldBuildDate,
	models.FieldPackager,
	models.FieldISize,
	models.FieldArch,
	models.FieldLicense,
	models.FieldReplaces,
	models.FieldGroups,
	models.FieldConflicts,
	models.FieldProvides,
	models.FieldDepends,
	models.FieldOptDepends,
	models.FieldMakeDepends,
	models.FieldCheckDepends,
}

// values returns the textual values of a set field
func values(pkg *models.Package, f models.Field) []string {
	if f.IsList() {
		return pkg.List(f)
	}
	if !pkg.Has(f) {
		return nil
	}

	switch f {
	case models.FieldName:
		return []string{pkg.Name}
	case models.FieldVersion:
		return []string{pkg.Version}
	case models.FieldBase:
		return []string{pkg.Base}
	case models.FieldFilename:
		return []string{pkg.Filename}
	case models.FieldDescription:
		return []string{pkg.Description}
	case models.FieldURL:
		return []string{pkg.URL}
	case models.FieldArch:
		return []string{pkg.Architecture}
	case models.FieldPackager:
		return []string{pkg.Packager}
	case models.FieldMD5Sum:
		return []string{pkg.MD5Sum}
	case models.FieldSHA256Sum:
		return []string{pkg.SHA256Sum}
	case models.FieldPGPSig:
		return []string{pkg.Base64Signature}
	case models.FieldCSize:
		return []string{strconv.FormatUint(pkg.CompressedSize, 10)}
	case models.FieldISize:
		return []string{strconv.FormatUint(pkg.InstalledSize, 10)}
	case models.FieldBuildDate:
		return []string{strconv.FormatInt(pkg.BuildDate, 10)}
	default:
		return nil
	}
}

// nonEmptyValues drops empty values, which would end the block they sit in
func nonEmptyValues(pkg *models.Package, f models.Field) []string {
	var out []string
	for _, v := range values(pkg, f) {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func writeBlocks(w io.Writer, pkg *models.Package, fields []models.Field) error {
	bw := bufio.NewWriter(w)
	for _, f := range fields {
		vals := nonEmptyValues(pkg, f)
		if len(vals) == 0 {
			continue
		}

		bw.WriteString("%" + f.String() + "%\n")
		for _, v := range vals {
			bw.WriteString(v)
			bw.WriteByte('\n')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// WriteDesc writes the desc entry of pkg. Unset scalars and empty lists
// are omitted.
func WriteDesc(w io.Writer, pkg *models.Package) error {
	return writeBlocks(w, pkg, descOrder)
}

// WriteFiles writes the files entry of pkg
func WriteFiles(w io.Writer, pkg *models.Package) error {
	return writeBlocks(w, pkg, []models.Field{models.FieldFiles})
}

// WritePkginfo writes pkg in the .PKGINFO format
func WritePkginfo(w io.Writer, pkg *models.Package) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("# Generated by pacrepo\n")
	for _, f := range pkginfoOrder {
		key := pkginfoKey(f)
		for _, v := range nonEmptyValues(pkg, f) {
			bw.WriteString(key + " = " + v + "\n")
		}
	}
	return bw.Flush()
}
