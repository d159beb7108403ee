package extraction

import (
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/drafts"
)

const refLimit = 64

// FieldExtractor parses a draft from raw document text.
type FieldExtractor struct {
	lines    []string
	pairs    []Pair
	synonyms Synonyms
}

// NewFieldExtractor prepares text for extraction. synonyms may be nil.
func NewFieldExtractor(text string, synonyms Synonyms) *FieldExtractor {
	lines := splitLines(text)
	return &FieldExtractor{
		lines:    lines,
		pairs:    parsePairs(lines),
		synonyms: synonyms,
	}
}

// Extract builds a draft. documentID seeds the placeholder load number used
// when no load number is found.
func (x *FieldExtractor) Extract(documentID uuid.UUID) drafts.Draft {
	d := drafts.New(x.loadNumber(documentID))

	if v, ok := x.value(FieldLoadType); ok {
		d.LoadType = v
	}
	if v, ok := x.value(FieldCustomerName); ok {
		d.CustomerName = v
	}

	d.CustomerRef = x.text(FieldCustomerRef, refLimit)
	d.ExternalTripID = x.text(FieldExternalTripID, refLimit)
	d.TruckUnit = x.text(FieldTruckUnit, refLimit)
	d.TrailerUnit = x.text(FieldTrailerUnit, refLimit)
	d.SalesRepName = x.text(FieldSalesRepName, 0)
	d.DropName = x.text(FieldDropName, 0)

	d.Rate = x.number(FieldRate)
	d.Miles = x.number(FieldMiles)
	d.PalletCount = x.count(FieldPalletCount)
	d.WeightLbs = x.count(FieldWeightLbs)

	if v, ok := x.value(FieldDesiredInvoiceDate); ok {
		if date, ok := parseDate(v); ok {
			d.DesiredInvoiceDate = &date
		}
	}

	d.ShipperReferenceNumber = x.reference(FieldShipperRef, shipperRefPatterns)
	d.ConsigneeReferenceNumber = x.reference(FieldConsigneeRef, consigneeRefPatterns)

	x.stops(&d)

	return d
}

// lookup resolves a field to its first labelled value: built-in exact labels,
// learned exact labels, then built-in and learned phrase containment.
func (x *FieldExtractor) lookup(f Field) (Pair, bool) {
	vocab := builtin[f]
	learned := x.synonyms[f]

	for _, p := range x.pairs {
		if slices.Contains(vocab.exact, p.Label) {
			return p, true
		}
	}
	for _, p := range x.pairs {
		if slices.Contains(learned, p.Label) {
			return p, true
		}
	}
	for _, phrases := range [][]string{vocab.contains, learned} {
		for _, p := range x.pairs {
			if hasAnyWord(p.Label, vocab.exclude) {
				continue
			}
			for _, phrase := range phrases {
				if containsPhrase(p.Label, phrase) {
					return p, true
				}
			}
		}
	}
	return Pair{}, false
}

func (x *FieldExtractor) value(f Field) (string, bool) {
	p, ok := x.lookup(f)
	if !ok {
		return "", false
	}
	return p.Value, true
}

func (x *FieldExtractor) text(f Field, limit int) *string {
	v, ok := x.value(f)
	if !ok {
		return nil
	}
	if limit > 0 {
		v = clip(v, limit)
	}
	return &v
}

func (x *FieldExtractor) number(f Field) *float64 {
	v, ok := x.value(f)
	if !ok {
		return nil
	}
	n, ok := parseNumber(v)
	if !ok {
		return nil
	}
	return &n
}

func (x *FieldExtractor) count(f Field) *int {
	v, ok := x.value(f)
	if !ok {
		return nil
	}
	n, ok := parseCount(v)
	if !ok {
		return nil
	}
	return &n
}

var (
	loadNumberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bload\s*(?:number|no\.?|#|id)\s*[:#-]?\s*([A-Za-z0-9][A-Za-z0-9-]*)`),
		regexp.MustCompile(`(?i)\bconfirmation\s*(?:number|no\.?|#)?\s*[:#-]\s*([A-Za-z0-9][A-Za-z0-9-]*)`),
		regexp.MustCompile(`(?i)\border\s*(?:number|no\.?|#)\s*[:#-]?\s*([A-Za-z0-9][A-Za-z0-9-]*)`),
	}
	shipperRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:shipper|pickup|pu)\s*(?:ref(?:erence)?|po)\s*(?:#|no\.?|number)?\s*[:#-]?\s*([A-Za-z0-9][A-Za-z0-9/_-]*)`),
		regexp.MustCompile(`(?i)\b(?:shipper|pickup)\s*#\s*[:-]?\s*([A-Za-z0-9][A-Za-z0-9/_-]*)`),
	}
	consigneeRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:consignee|delivery|del)\s*(?:ref(?:erence)?|po)\s*(?:#|no\.?|number)?\s*[:#-]?\s*([A-Za-z0-9][A-Za-z0-9/_-]*)`),
		regexp.MustCompile(`(?i)\b(?:consignee|delivery)\s*#\s*[:-]?\s*([A-Za-z0-9][A-Za-z0-9/_-]*)`),
	}
)

// PlaceholderPrefix starts every synthesized load number.
const PlaceholderPrefix = "DOC-"

// Placeholder returns the synthesized load number for a document.
func Placeholder(documentID uuid.UUID) string {
	return PlaceholderPrefix + strings.ToUpper(strings.ReplaceAll(documentID.String(), "-", "")[:8])
}

func isPlaceholder(loadNumber string) bool {
	return loadNumber == "" || strings.HasPrefix(loadNumber, PlaceholderPrefix)
}

func (x *FieldExtractor) loadNumber(documentID uuid.UUID) string {
	if v, ok := x.value(FieldLoadNumber); ok {
		if tok := firstToken(v); hasDigit(tok) {
			return clip(tok, refLimit)
		}
	}
	if v, ok := x.scan(loadNumberPatterns); ok {
		return v
	}
	return Placeholder(documentID)
}

func (x *FieldExtractor) reference(f Field, patterns []*regexp.Regexp) *string {
	if v := x.text(f, refLimit); v != nil {
		return v
	}
	if v, ok := x.scan(patterns); ok {
		return &v
	}
	return nil
}

// scan returns the first pattern capture containing a digit.
func (x *FieldExtractor) scan(patterns []*regexp.Regexp) (string, bool) {
	for _, line := range x.lines {
		for _, re := range patterns {
			if g := re.FindStringSubmatch(line); g != nil && hasDigit(g[1]) {
				return clip(g[1], refLimit), true
			}
		}
	}
	return "", false
}

func firstToken(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func clip(s string, limit int) string {
	if r := []rune(s); len(r) > limit {
		return string(r[:limit])
	}
	return s
}
