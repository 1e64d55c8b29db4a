package ffmpeg

import (
	"fmt"

	"github.com/disintegration/imaging"
)

// VerifyThumbnail decodes the JPEG at path and checks that it is height
// pixels high. Failures wrap ErrBadThumbnail.
func VerifyThumbnail(path string, height int) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadThumbnail, err)
	}
	b := img.Bounds()
	if b.Dy() != height {
		return fmt.Errorf("%w: got %dx%d, want height %d", ErrBadThumbnail, b.Dx(), b.Dy(), height)
	}
	if b.Dx() == 0 {
		return fmt.Errorf("%w: zero width", ErrBadThumbnail)
	}
	return nil
}
