package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	apperrors "github.com/matzehuels/slicetopo/pkg/errors"
)

// rsvgConvert is the librsvg converter binary.
const rsvgConvert = "rsvg-convert"

// ToPDF converts an SVG drawing to PDF with rsvg-convert. A missing binary
// is an UNSUPPORTED error naming the package to install.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	bin, err := exec.LookPath(rsvgConvert)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeUnsupported,
			"pdf output needs %s (macOS: brew install librsvg, Linux: apt install librsvg2-bin)", rsvgConvert)
	}

	cmd := exec.CommandContext(ctx, bin, "--format", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "%s: %s", rsvgConvert, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
