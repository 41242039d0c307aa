package domain

// FileType represents the allowed trade document types for extraction.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes is the set of sniffed content types accepted for upload.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// EntryMode is how the draft is being filled in.
type EntryMode string

const (
	EntryModeManual   EntryMode = "manual"
	EntryModeDocument EntryMode = "document"
)

// Valid reports whether m is a known entry mode.
func (m EntryMode) Valid() bool {
	return m == EntryModeManual || m == EntryModeDocument
}

// Canonical unit-of-measure vocabulary.
const (
	UOMKilograms = "kg"
	UOMPounds    = "lb"
	UOMPieces    = "pieces"
	UOMMeters    = "meters"
	UOMUnits     = "units"
	UOMSets      = "sets"
)

// Canonical export reason vocabulary.
const (
	ExportReasonSale        = "sale"
	ExportReasonGift        = "gift"
	ExportReasonSample      = "sample"
	ExportReasonRepair      = "repair"
	ExportReasonReturn      = "return"
	ExportReasonPersonalUse = "personal_use"
	ExportReasonTemporary   = "temporary"
)

// Service levels priced by the calculator.
const (
	ServiceLevelStandard = "Standard"
	ServiceLevelExpress  = "Express"
	ServiceLevelEconomy  = "Economy"
	ServiceLevelFreight  = "Freight"
)

// PickupTypeScheduled is the pickup type that incurs an origin pickup fee.
const PickupTypeScheduled = "Scheduled Pickup"

// ExtractionOutcome classifies a completed extraction request.
type ExtractionOutcome string

const (
	ExtractionOutcomeMerged ExtractionOutcome = "merged"
	ExtractionOutcomeNoData ExtractionOutcome = "no_data"
)
