package service

import (
	"bytes"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"golang.org/x/image/draw"

	"github.com/accountd-dev/accountd/internal/domain"
	"github.com/accountd-dev/accountd/internal/errors"
)

// Profile photos are downscaled to fit this bound and stored as JPEG.
const thumbnailBound = 100

const thumbnailJpegQuality = 85

// UploadPhoto decodes the uploaded bytes, downscales them to the thumbnail
// bound and stores the result on the account.
func (a *Accounts) UploadPhoto(acc domain.Account, data []byte) (domain.Account, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Account{}, &errors.ErrorWithStatusCode{Message: "Unrecognized image format", StatusCode: http.StatusBadRequest}
	}

	thumb, err := encodeThumbnail(src)
	if err != nil {
		return domain.Account{}, err
	}

	acc.Image = thumb
	return a.storage.UpdateAccount(acc)
}

// encodeThumbnail scales src to fit thumbnailBound x thumbnailBound while
// keeping the aspect ratio, and encodes the result as JPEG.
func encodeThumbnail(src image.Image) ([]byte, error) {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if w > thumbnailBound || h > thumbnailBound {
		if w >= h {
			h = h * thumbnailBound / w
			w = thumbnailBound
		} else {
			w = w * thumbnailBound / h
			h = thumbnailBound
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
	}

	// JPEG has no alpha channel; composite transparent regions over white
	// instead of the zero-valued (black) canvas.
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: thumbnailJpegQuality}); err != nil {
		return nil, &errors.ErrorWithStatusCode{Message: "Could not encode thumbnail", StatusCode: http.StatusInternalServerError}
	}
	return buf.Bytes(), nil
}
