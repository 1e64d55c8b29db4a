package naming

import (
	"path/filepath"
	"strings"
)

// Reserved directory names. Subtrees with these names are never descended.
const (
	CacheDirName   = "@eaDir"
	RecycleDirName = "#recycle"
)

// RepairSuffix is appended to a source path to name its stream-copy repair.
const RepairSuffix = ".repaired.mp4"

// videoExtensions is the allow-list of container extensions (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".wmv":  true,
	".mkv":  true,
	".flv":  true,
	".mov":  true,
	".rmvb": true,
	".amv":  true,
	".m1v":  true,
	".m2ts": true,
	".m2v":  true,
	".m4v":  true,
	".swf":  true,
	".ts":   true,
}

// filmStripFiles are pre-rendered previews Synology writes beside sources.
var filmStripFiles = map[string]bool{
	"SYNOPHOTO_FILM_H264.mp4":  true,
	"SYNOPHOTO_FILM_M.mp4":     true,
	"SYNOPHOTO_FILM_MPEG4.mp4": true,
}

// Extensions returns the allow-list, unordered.
func Extensions() []string {
	out := make([]string, 0, len(videoExtensions))
	for ext := range videoExtensions {
		out = append(out, ext)
	}
	return out
}

// IsVideoExt reports whether ext (with dot, any case) is in the allow-list.
func IsVideoExt(ext string) bool {
	return videoExtensions[strings.ToLower(ext)]
}

// IsExcludedDir reports whether a directory with this base name is pruned.
func IsExcludedDir(name string) bool {
	return name == CacheDirName || name == RecycleDirName
}

// IsArtifact reports whether a file name is a generated video that must not
// be treated as source media: a film strip or a leftover repair output.
// Any name ending in RepairSuffix (case-insensitive) matches, so a genuine
// source video named like "x.repaired.mp4" never gets a thumbnail. Repairs
// are written beside their source while the walk is still running.
func IsArtifact(name string) bool {
	return filmStripFiles[name] || strings.HasSuffix(strings.ToLower(name), RepairSuffix)
}

// IsCandidateName reports whether a plain file with this base name should
// get a thumbnail.
func IsCandidateName(name string) bool {
	return IsVideoExt(filepath.Ext(name)) && !IsArtifact(name)
}
