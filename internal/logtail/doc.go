// Package logtail reads the tail of showreel's log file for the in-app log
// overlay.
//
// Read uses a ring buffer of maxLines strings, so it scans the file once and
// keeps O(maxLines) memory regardless of file size:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file, store it at the current index and advance
//	   (wrapping at maxLines)
//	3. Return the buffer starting from the oldest line
//
// Parse understands the standard library logger's format (log.LstdFlags) with
// an optional prefix, which is what tea.LogToFile writes:
//
//	showreel 2026/10/17 14:32:15 play rejected: media not ready
//
// The level is inferred from the message text. Lines without a timestamp,
// such as panic traces, are kept as the message.
//
// Read returns nil, nil for a missing file; the overlay then shows an empty
// log rather than an error.
package logtail
