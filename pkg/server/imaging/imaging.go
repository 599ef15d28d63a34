/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package imaging validates uploaded image files and extracts their metadata
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/bbrks/go-blurhash"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

// blurHashSize is the largest side of the thumbnail a blurhash is computed from
const blurHashSize = 64

// Metadata describes a decoded image
type Metadata struct {
	Width    int
	Height   int
	Format   string
	BlurHash string
}

// Inspect decodes the image to read its dimensions and compute a blurhash
// placeholder. The blurhash uses 4x3 components.
func Inspect(data []byte) (Metadata, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, errors.Wrap(err, "decoding image")
	}

	bounds := img.Bounds()
	m := Metadata{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}

	hash, err := blurhash.Encode(4, 3, thumbnail(img))
	if err != nil {
		return m, errors.Wrap(err, "encoding blurhash")
	}
	m.BlurHash = hash

	return m, nil
}

// thumbnail scales img down so that its larger side is at most blurHashSize
func thumbnail(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth, srcHeight := bounds.Dx(), bounds.Dy()

	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = blurHashSize
		dstHeight = max(srcHeight*blurHashSize/srcWidth, 1)
	} else {
		dstHeight = blurHashSize
		dstWidth = max(srcWidth*blurHashSize/srcHeight, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)

	return dst
}
