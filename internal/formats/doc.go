// Package formats is the static catalog of file formats the converter knows
// about.
//
// It has no dependencies beyond the standard library and performs no I/O, so
// both the HTTP layer and the transcoder can import it without cycles.
//
// # Categories
//
// Every recognized extension belongs to exactly one [Category]:
//
//	formats.CategoryImage    // jpg, png, gif, heic, svg
//	formats.CategoryDocument // pdf, doc, docx, xls, csv
//	formats.CategoryAudio    // mp3, wav, m4a, ogg, flac
//	formats.CategoryVideo    // mp4, mov, avi, flv
//
// # Classification
//
// Use [Classify] to place an uploaded file into a category. Files whose
// extension is not in the catalog have no category, and the UI disables
// format selection for them:
//
//	if c, ok := formats.Classify(header.Filename); ok {
//	    options := formats.ConversionOptions(c) // e.g. ["MP4", "MOV", "AVI", "FLV"]
//	}
//
// [IsVideo] is the shortcut the transcoder uses to decide whether the
// hardware-accelerated path applies.
package formats
