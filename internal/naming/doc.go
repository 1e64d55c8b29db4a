// Package naming holds the Synology Photos naming conventions: the reserved
// cache and recycle-bin directory names, the video extension allow-list,
// the film-strip artifacts to ignore, and the thumbnail target layout
//
//	<dir>/@eaDir/<name.ext>/SYNOPHOTO_THUMB_M.jpg
//
// Everything here is pure string/path logic; nothing touches the disk.
package naming
