package deb

// ControlField represents a standard field in a Debian control file.
type ControlField string

const (
	FieldSource           ControlField = "Source"
	FieldPackage          ControlField = "Package"
	FieldVersion          ControlField = "Version"
	FieldArchitecture     ControlField = "Architecture"
	FieldMaintainer       ControlField = "Maintainer"
	FieldUploaders        ControlField = "Uploaders"
	FieldSection          ControlField = "Section"
	FieldPriority         ControlField = "Priority"
	FieldStandardsVersion ControlField = "Standards-Version"
	FieldHomepage         ControlField = "Homepage"
	FieldBuildDepends     ControlField = "Build-Depends"
	FieldDepends          ControlField = "Depends"
	FieldRecommends       ControlField = "Recommends"
	FieldSuggests         ControlField = "Suggests"
	FieldDescription      ControlField = "Description"
)

// DSCField represents a standard field in a Debian source control (.dsc) stanza.
type DSCField string

const (
	DSCFormat           DSCField = "Format"
	DSCSource           DSCField = "Source"
	DSCBinary           DSCField = "Binary"
	DSCArchitecture     DSCField = "Architecture"
	DSCVersion          DSCField = "Version"
	DSCMaintainer       DSCField = "Maintainer"
	DSCHomepage         DSCField = "Homepage"
	DSCStandardsVersion DSCField = "Standards-Version"
	DSCBuildDepends     DSCField = "Build-Depends"
)

// DebianFile represents a standard file of the debian/ packaging directory.
type DebianFile string

const (
	FileControl      DebianFile = "control"
	FileChangelog    DebianFile = "changelog"
	FileCompat       DebianFile = "compat"
	FileCopyright    DebianFile = "copyright"
	FileRules        DebianFile = "rules"
	FileSourceFormat DebianFile = "source/format"
)
