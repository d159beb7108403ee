package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvExtractionScannedThreshold = "LOADEXTRACT_SCANNED_TEXT_THRESHOLD"
	EnvExtractionMaxFileMB        = "LOADEXTRACT_MAX_FILE_MB"
	EnvExtractionMaxPages         = "LOADEXTRACT_MAX_PAGES"
	EnvExtractionOCRTimeoutMS     = "LOADEXTRACT_OCR_TIMEOUT_MS"
	EnvExtractionOCRLanguage      = "LOADEXTRACT_OCR_LANGUAGE"
	EnvExtractionOCRDPI           = "LOADEXTRACT_OCR_DPI"
	EnvExtractionOCRmyPDF         = "LOADEXTRACT_OCRMYPDF_PATH"
	EnvExtractionPdftoppm         = "LOADEXTRACT_PDFTOPPM_PATH"
	EnvExtractionTesseract        = "LOADEXTRACT_TESSERACT_PATH"
)

// ExtractionConfig holds text acquisition limits and OCR tool settings.
type ExtractionConfig struct {
	ScannedTextThreshold int    `toml:"scanned_text_threshold"`
	MaxFileMB            int    `toml:"max_file_mb"`
	MaxPages             int    `toml:"max_pages"`
	OCRTimeoutMS         int    `toml:"ocr_timeout_ms"`
	OCRLanguage          string `toml:"ocr_language"`
	OCRDPI               int    `toml:"ocr_dpi"`
	OCRmyPDF             string `toml:"ocrmypdf_path"`
	Pdftoppm             string `toml:"pdftoppm_path"`
	Tesseract            string `toml:"tesseract_path"`
}

// MaxFileBytes returns MaxFileMB in bytes.
func (c *ExtractionConfig) MaxFileBytes() int64 {
	return int64(c.MaxFileMB) * 1024 * 1024
}

// OCRTimeout returns the per-invocation wall-clock limit for OCR tools.
func (c *ExtractionConfig) OCRTimeout() time.Duration {
	return time.Duration(c.OCRTimeoutMS) * time.Millisecond
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ExtractionConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ExtractionConfig) Merge(overlay *ExtractionConfig) {
	if overlay.ScannedTextThreshold != 0 {
		c.ScannedTextThreshold = overlay.ScannedTextThreshold
	}
	if overlay.MaxFileMB != 0 {
		c.MaxFileMB = overlay.MaxFileMB
	}
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
	if overlay.OCRTimeoutMS != 0 {
		c.OCRTimeoutMS = overlay.OCRTimeoutMS
	}
	if overlay.OCRLanguage != "" {
		c.OCRLanguage = overlay.OCRLanguage
	}
	if overlay.OCRDPI != 0 {
		c.OCRDPI = overlay.OCRDPI
	}
	if overlay.OCRmyPDF != "" {
		c.OCRmyPDF = overlay.OCRmyPDF
	}
	if overlay.Pdftoppm != "" {
		c.Pdftoppm = overlay.Pdftoppm
	}
	if overlay.Tesseract != "" {
		c.Tesseract = overlay.Tesseract
	}
}

func (c *ExtractionConfig) loadDefaults() {
	if c.ScannedTextThreshold == 0 {
		c.ScannedTextThreshold = 300
	}
	if c.MaxFileMB == 0 {
		c.MaxFileMB = 20
	}
	if c.MaxPages == 0 {
		c.MaxPages = 10
	}
	if c.OCRTimeoutMS == 0 {
		c.OCRTimeoutMS = 120000
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = "eng"
	}
	if c.OCRDPI == 0 {
		c.OCRDPI = 300
	}
	if c.OCRmyPDF == "" {
		c.OCRmyPDF = "ocrmypdf"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
}

func (c *ExtractionConfig) loadEnv() {
	envInt(EnvExtractionScannedThreshold, &c.ScannedTextThreshold)
	envInt(EnvExtractionMaxFileMB, &c.MaxFileMB)
	envInt(EnvExtractionMaxPages, &c.MaxPages)
	envInt(EnvExtractionOCRTimeoutMS, &c.OCRTimeoutMS)
	envInt(EnvExtractionOCRDPI, &c.OCRDPI)
	if v := os.Getenv(EnvExtractionOCRLanguage); v != "" {
		c.OCRLanguage = v
	}
	if v := os.Getenv(EnvExtractionOCRmyPDF); v != "" {
		c.OCRmyPDF = v
	}
	if v := os.Getenv(EnvExtractionPdftoppm); v != "" {
		c.Pdftoppm = v
	}
	if v := os.Getenv(EnvExtractionTesseract); v != "" {
		c.Tesseract = v
	}
}

func (c *ExtractionConfig) validate() error {
	if c.ScannedTextThreshold < 1 {
		return fmt.Errorf("scanned_text_threshold must be positive")
	}
	if c.MaxFileMB < 1 {
		return fmt.Errorf("max_file_mb must be positive")
	}
	if c.MaxPages < 1 {
		return fmt.Errorf("max_pages must be positive")
	}
	if c.OCRTimeoutMS < 1 {
		return fmt.Errorf("ocr_timeout_ms must be positive")
	}
	if c.OCRDPI < 72 || c.OCRDPI > 1200 {
		return fmt.Errorf("ocr_dpi out of range: %d", c.OCRDPI)
	}
	return nil
}

func envInt(name string, dst *int) {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envFloat(name string, dst *float64) {
	if v := os.Getenv(name); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
