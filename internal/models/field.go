package models

// Field identifies one section of a package record
type Field int

const (
	// FieldNone means no field has been recognized yet
	FieldNone Field = iota
	FieldFilename
	FieldName
	FieldBase
	FieldVersion
	FieldDescription
	FieldGroups
	FieldCSize
	FieldISize
	FieldMD5Sum
	FieldSHA256Sum
	FieldPGPSig
	FieldURL
	FieldLicense
	FieldArch
	FieldBuildDate
	FieldPackager
	FieldReplaces
	FieldDepends
	FieldConflicts
	FieldProvides
	FieldOptDepends
	FieldMakeDepends
	FieldCheckDepends
	FieldFiles

	fieldCount
)

var fieldMarkers = [fieldCount]string{
	FieldNone:         "",
	FieldFilename:     "FILENAME",
	FieldName:         "NAME",
	FieldBase:         "BASE",
	FieldVersion:      "VERSION",
	FieldDescription:  "DESC",
	FieldGroups:       "GROUPS",
	FieldCSize:        "CSIZE",
	FieldISize:        "ISIZE",
	FieldMD5Sum:       "MD5SUM",
	FieldSHA256Sum:    "SHA256SUM",
	FieldPGPSig:       "PGPSIG",
	FieldURL:          "URL",
	FieldLicense:      "LICENSE",
	FieldArch:         "ARCH",
	FieldBuildDate:    "BUILDDATE",
	FieldPackager:     "PACKAGER",
	FieldReplaces:     "REPLACES",
	FieldDepends:      "DEPENDS",
	FieldConflicts:    "CONFLICTS",
	FieldProvides:     "PROVIDES",
	FieldOptDepends:   "OPTDEPENDS",
	FieldMakeDepends:  "MAKEDEPENDS",
	FieldCheckDepends: "CHECKDEPENDS",
	FieldFiles:        "FILES",
}

var markerFields = func() map[string]Field {
	m := make(map[string]Field, fieldCount)
	for f := FieldFilename; f < fieldCount; f++ {
		m[fieldMarkers[f]] = f
	}
	return m
}()

// FieldByMarker looks up the field named by a desc marker, without the
// surrounding '%'. Matching is case-sensitive.
func FieldByMarker(name string) (Field, bool) {
	f, ok := markerFields[name]
	return f, ok
}

// String returns the desc marker name of the field
func (f Field) String() string {
	if f < FieldNone || f >= fieldCount {
		return "UNKNOWN"
	}
	if f == FieldNone {
		return "NONE"
	}
	return fieldMarkers[f]
}

// IsList reports whether the field accumulates one value per line
func (f Field) IsList() bool {
	switch f {
	case FieldGroups, FieldLicense, FieldReplaces, FieldDepends, FieldConflicts,
		FieldProvides, FieldOptDepends, FieldMakeDepends, FieldCheckDepends, FieldFiles:
		return true
	default:
		return false
	}
}

// IsIdentity reports whether the field is part of the record's identity
func (f Field) IsIdentity() bool {
	return f == FieldName || f == FieldVersion
}
