package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/JaimeStill/loadextract/internal/config"
)

// OCR tool identifiers recorded in document metadata.
const (
	ToolOCRmyPDF  = "ocrmypdf"
	ToolRasterOCR = "pdftoppm+tesseract"
	ToolTesseract = "tesseract"
)

// OCRResult is the outcome of the OCR stage. A non-nil Err means OCR
// produced no usable text; the document still proceeds.
type OCRResult struct {
	Text string
	Tool string
	Err  error
}

// Failed reports whether OCR produced no usable text.
func (r OCRResult) Failed() bool {
	return r.Err != nil
}

// OCR selects and runs an available OCR tool chain for a scanned document.
type OCR struct {
	runner Runner
	reader PDFReader
	cfg    config.ExtractionConfig
	logger *slog.Logger
}

// NewOCR creates an OCR orchestrator.
func NewOCR(runner Runner, reader PDFReader, cfg config.ExtractionConfig, logger *slog.Logger) *OCR {
	return &OCR{
		runner: runner,
		reader: reader,
		cfg:    cfg,
		logger: logger.With("system", "ocr"),
	}
}

// Run OCRs the file at path, writing intermediates under workDir.
//
// PDFs try ocrmypdf first, then pdftoppm with per-page tesseract. Images go
// straight to tesseract.
func (o *OCR) Run(ctx context.Context, path string, isPDF bool, workDir string) OCRResult {
	if !isPDF {
		if !o.runner.Available(o.cfg.Tesseract) {
			return OCRResult{Err: ErrOCRUnavailable}
		}
		text, err := o.tesseract(ctx, path)
		return OCRResult{Text: text, Tool: ToolTesseract, Err: emptyText(text, err, ToolTesseract)}
	}

	hasOCRmyPDF := o.runner.Available(o.cfg.OCRmyPDF)
	hasRaster := o.runner.Available(o.cfg.Pdftoppm) && o.runner.Available(o.cfg.Tesseract)

	if !hasOCRmyPDF && !hasRaster {
		return OCRResult{Err: ErrOCRUnavailable}
	}

	var primary error
	if hasOCRmyPDF {
		text, err := o.ocrmypdf(ctx, path, workDir)
		if err = emptyText(text, err, ToolOCRmyPDF); err == nil {
			return OCRResult{Text: text, Tool: ToolOCRmyPDF}
		}
		if !hasRaster {
			return OCRResult{Tool: ToolOCRmyPDF, Err: err}
		}
		o.logger.Warn("ocrmypdf failed, falling back to rasterized OCR", "error", err)
		primary = err
	}

	text, err := o.raster(ctx, path, workDir)
	if err = emptyText(text, err, ToolRasterOCR); err != nil {
		return OCRResult{Tool: ToolRasterOCR, Err: errors.Join(primary, err)}
	}
	return OCRResult{Text: text, Tool: ToolRasterOCR}
}

func (o *OCR) ocrmypdf(ctx context.Context, path, workDir string) (string, error) {
	out := filepath.Join(workDir, "ocr.pdf")
	// ocrmypdf --force-ocr --deskew -l <lang> <in.pdf> <out.pdf>
	if _, err := o.runner.Run(
		ctx, o.cfg.OCRTimeout(), o.cfg.OCRmyPDF,
		"--force-ocr", "--deskew", "-l", o.cfg.OCRLanguage, path, out,
	); err != nil {
		return "", err
	}
	return o.reader.Text(out)
}

func (o *OCR) raster(ctx context.Context, path, workDir string) (string, error) {
	prefix := filepath.Join(workDir, "page")
	// pdftoppm -r <dpi> -png -f 1 -l <max> <in.pdf> <workDir/page>
	if _, err := o.runner.Run(
		ctx, o.cfg.OCRTimeout(), o.cfg.Pdftoppm,
		"-r", strconv.Itoa(o.cfg.OCRDPI),
		"-png",
		"-f", "1",
		"-l", strconv.Itoa(o.cfg.MaxPages),
		path, prefix,
	); err != nil {
		return "", err
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order.
	images, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(images)
	if len(images) > o.cfg.MaxPages {
		images = images[:o.cfg.MaxPages]
	}
	if len(images) == 0 {
		return "", &ToolError{Tool: filepath.Base(o.cfg.Pdftoppm), Err: errors.New("no pages rendered")}
	}

	var (
		pages []string
		errs  []error
	)
	for i, img := range images {
		text, err := o.tesseract(ctx, img)
		if err != nil {
			errs = append(errs, fmt.Errorf("page %d: %w", i+1, err))
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}
	if len(pages) == 0 {
		return "", errors.Join(errs...)
	}
	if len(errs) > 0 {
		o.logger.Warn("some pages failed OCR", "failed", len(errs), "pages", len(images))
	}
	return strings.Join(pages, "\n\n"), nil
}

func (o *OCR) tesseract(ctx context.Context, path string) (string, error) {
	// tesseract <image> stdout -l <lang>
	out, err := o.runner.Run(ctx, o.cfg.OCRTimeout(), o.cfg.Tesseract, path, "stdout", "-l", o.cfg.OCRLanguage)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func emptyText(text string, err error, tool string) error {
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return &ToolError{Tool: tool, Err: errors.New("no text recognized")}
	}
	return nil
}

// newWorkDir creates the per-document scratch directory.
func newWorkDir(id string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "loadextract-"+id+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("create work dir: %w", err)
	}
	return dir, func() { os.RemoveAll(dir) }, nil
}
