package render

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontOnce    sync.Once
	boldFont    *opentype.Font
	regularFont *opentype.Font
)

func loadFonts() {
	boldFont, _ = opentype.Parse(gobold.TTF)
	regularFont, _ = opentype.Parse(goregular.TTF)
}

// newFace returns a fresh face per render; opentype faces keep scratch
// buffers and must not be shared between goroutines.
func newFace(f *opentype.Font, size float64) font.Face {
	if f == nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// CaptionFace is used for HUD panels.
func CaptionFace() font.Face {
	fontOnce.Do(loadFonts)
	return newFace(boldFont, 20)
}

// LabelFace is used for the faint cell numbers.
func LabelFace() font.Face {
	fontOnce.Do(loadFonts)
	return newFace(regularFont, 18)
}
