package engine

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/amezav/filedrop/internal/dataurl"
	"github.com/amezav/filedrop/internal/models"
)

const placeholderWidth = 800
const placeholderHeight = 600

// renderDocumentStub produces the document-to-pdf output: a fixed
// 800x600 PNG with the filename and size drawn on it. No document
// content is parsed or transcoded.
func (e *Engine) renderDocumentStub(
	file models.PendingFile,
	config models.ConversionConfig,
) (*models.ConversionResult, error) {
	canvas := imaging.New(placeholderWidth, placeholderHeight, color.White)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}

	drawer.Dot = fixed.P(40, placeholderHeight/2-10)
	drawer.DrawString(fmt.Sprintf("Document: %s", file.Name))

	drawer.Dot = fixed.P(40, placeholderHeight/2+10)
	drawer.DrawString(fmt.Sprintf("Size: %d bytes", len(file.Data)))

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf(
			"failed to render placeholder for %s: %w",
			file.Name,
			err,
		)
	}

	return &models.ConversionResult{
		Filename: outputFilename(file.Name, config.TargetFormat),
		MIME:     "image/png",
		DataURL:  dataurl.Encode("image/png", buf.Bytes()),
		Size:     buf.Len(),
	}, nil
}
