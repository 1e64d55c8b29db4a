package naming

import (
	"path/filepath"
)

// Thumbnail file names inside a target directory.
const (
	ThumbFileName = "SYNOPHOTO_THUMB_M.jpg"
	// ThumbTempName is where extraction writes before the rename over
	// ThumbFileName. It keeps the .jpg suffix so ffmpeg picks the muxer.
	ThumbTempName = "SYNOPHOTO_THUMB_M.tmp.jpg"
	// FailMarkerGlob matches stale failure markers left by earlier runs.
	FailMarkerGlob = "*.fail"
)

// Target is where the thumbnail for one source video lives.
type Target struct {
	Dir   string // <dir>/@eaDir/<name.ext>
	Thumb string // <Dir>/SYNOPHOTO_THUMB_M.jpg
	Temp  string // <Dir>/SYNOPHOTO_THUMB_M.tmp.jpg
}

// TargetFor derives the thumbnail target for the video at path.
func TargetFor(path string) Target {
	dir := filepath.Join(filepath.Dir(path), CacheDirName, filepath.Base(path))
	return Target{
		Dir:   dir,
		Thumb: filepath.Join(dir, ThumbFileName),
		Temp:  filepath.Join(dir, ThumbTempName),
	}
}

// RepairPath returns the sibling path a repair of path is written to.
func RepairPath(path string) string {
	return path + RepairSuffix
}
