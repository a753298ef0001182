package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"
	"time"

	"github.com/chromedp/chromedp"

	errs "github.com/matzehuels/nestboard/pkg/errors"
	"github.com/matzehuels/nestboard/pkg/observability"
)

// Formats accepted by the render command and the HTTP API.
const (
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
)

// ParseFormat normalizes a format name or file extension.
func ParseFormat(s string) (string, error) {
	switch s {
	case "svg", ".svg", "":
		return FormatSVG, nil
	case "dot", ".dot", "gv", ".gv":
		return FormatDOT, nil
	case "png", ".png":
		return FormatPNG, nil
	case "jpg", ".jpg", "jpeg", ".jpeg":
		return FormatJPEG, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unsupported output format %q (want svg, dot, png or jpeg)", s)
}

// ToPNG converts SVG bytes to PNG using headless Chrome. A scale of 2.0
// produces a 2x resolution image.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, FormatPNG, 0)
	out, err := screenshot(ctx, svg, scale)
	observability.Render().OnRenderComplete(ctx, FormatPNG, time.Since(start), err)
	return out, err
}

// ToJPEG converts SVG bytes to JPEG by re-encoding the PNG screenshot.
func ToJPEG(ctx context.Context, svg []byte, scale float64, quality int) ([]byte, error) {
	data, err := ToPNG(ctx, svg, scale)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	if quality <= 0 || quality > 100 {
		quality = 90
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func screenshot(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	cctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var buf []byte
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(1280, 800, chromedp.EmulateScale(scale)),
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.Screenshot(`svg`, &buf, chromedp.ByQuery),
	}
	if err := chromedp.Run(cctx, tasks); err != nil {
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	if len(buf) == 0 {
		return nil, errs.New(errs.ErrCodeInternal, "screenshot is empty")
	}
	return buf, nil
}
