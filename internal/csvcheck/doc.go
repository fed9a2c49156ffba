// Package csvcheck verifies that a data CSV and a fit CSV produced for the
// same mass binning can be analyzed together.
//
// The two files are only meaningful side by side when they carry the same
// number of rows (one per mass bin, in the same sorted order) and follow the
// column conventions of the extraction macros: data files carry m_center,
// events and events_err; fit files carry detected_events and
// detected_events_err, and every uncertainty column "<name>_err" sits next to
// its "<name>" value column.
package csvcheck
