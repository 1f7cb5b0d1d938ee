package model

// Search is one line of a search file: a memorial-search URL and the label
// its results are filed under. Labels containing "Has GPS" or "No GPS"
// steer the worklist instructions.
type Search struct {
	URL   string
	Label string
}

// Worklist instructions, one per work item.
const (
	InstructionUpdateGPS = "Update GPS"
	InstructionTakePhoto = "Take Photo"
	InstructionAddGPS    = "Add GPS"
	InstructionNone      = "-"
)

// WorkItem is one memorial found by a search, with what a volunteer should
// do at the grave.
type WorkItem struct {
	// Ref identifies the memorial.
	Ref MemorialRef

	// URL is the absolute memorial URL.
	URL string

	// Search is the label of the search that found the memorial.
	Search string

	// SortName is "Surname, Given Names", built from the slug.
	SortName string

	// FullName is the name printed in the search result.
	FullName string

	// Dates is the year range, e.g. "1900-1977" or "?-1993".
	Dates string

	// RawDates is the date line as printed in the search result.
	RawDates string

	// Plot is the plot with the configured plot label removed.
	Plot string

	// NoPhoto is true when the grave has no photo yet.
	NoPhoto bool

	// Photographer is credited for the memorial's profile photo. It is only
	// looked up for searches labelled "Has GPS".
	Photographer string

	// Instruction is one of the Instruction constants.
	Instruction string
}
