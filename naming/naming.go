// Package naming derives the deterministic file names and date-hierarchy
// paths used by the archive. Everything here is purely computational: there
// is no filesystem access, and no call fails for any well-formed timestamp
// or integer id.
package naming

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BuildStem returns the filename stem for an archived item:
//
//     {YYYYMMDDHHMMSS}-{chatID}-{messageID}-{kind}
//
// The timestamp is truncated to whole seconds. Identical inputs always
// produce an identical stem.
func BuildStem(ts time.Time, chatID, messageID int64, kind string) string {
	return fmt.Sprintf("%04d%02d%02d%02d%02d%02d-%d-%d-%s",
		ts.Year(), int(ts.Month()), ts.Day(),
		ts.Hour(), ts.Minute(), ts.Second(),
		chatID, messageID, kind)
}

// A Date holds the calendar parts used for directory placement.
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateOf returns the Date for the given timestamp.
func DateOf(ts time.Time) Date {
	y, m, d := ts.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// BuildPaths returns the content path and the metadata side-car path for the
// given stem under baseDir/YYYY/MM/DD. Single-digit months and days are zero
// padded. It does not create any directories.
func BuildPaths(baseDir string, date Date, stem, ext string) (string, string) {
	dir := filepath.Join(baseDir,
		fmt.Sprintf("%04d", date.Year),
		fmt.Sprintf("%02d", date.Month),
		fmt.Sprintf("%02d", date.Day))
	return filepath.Join(dir, stem+"."+ext), filepath.Join(dir, stem+".json")
}

// StemInfo is the result of decoding an archived file name.
type StemInfo struct {
	Stem      string // file name without the extension
	Timestamp time.Time
	ChatID    int64
	MessageID int64
	Kind      string // "text" or "audio"
	Ext       string // extension without the dot
}

// ParseStem decodes a file name produced by BuildStem and BuildPaths back
// into its parts. It returns false for any name this system did not produce,
// which lets callers skip foreign files when scanning a storage tree. The
// chat id may be negative (Telegram group chats are).
func ParseStem(filename string) (StemInfo, bool) {
	dot := strings.LastIndexByte(filename, '.')
	if dot <= 0 || dot == len(filename)-1 {
		return StemInfo{}, false
	}
	stem, ext := filename[:dot], filename[dot+1:]

	// {14 digit timestamp}-{chat}-{message}-{kind}
	if len(stem) < 15 || stem[14] != '-' {
		return StemInfo{}, false
	}
	ts, err := time.ParseInLocation("20060102150405", stem[:14], time.Local)
	if err != nil {
		return StemInfo{}, false
	}
	rest := stem[15:]
	i := strings.LastIndexByte(rest, '-')
	if i < 0 {
		return StemInfo{}, false
	}
	kind := rest[i+1:]
	if kind != "text" && kind != "audio" {
		return StemInfo{}, false
	}
	rest = rest[:i]
	i = strings.LastIndexByte(rest, '-')
	if i < 0 {
		return StemInfo{}, false
	}
	messageID, err := strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil {
		return StemInfo{}, false
	}
	// whatever is left is the chat id, possibly with a leading minus
	chatID, err := strconv.ParseInt(rest[:i], 10, 64)
	if err != nil {
		return StemInfo{}, false
	}
	return StemInfo{
		Stem:      stem,
		Timestamp: ts,
		ChatID:    chatID,
		MessageID: messageID,
		Kind:      kind,
		Ext:       ext,
	}, true
}
