package extraction

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/loadextract/internal/drafts"
	"github.com/JaimeStill/loadextract/internal/examples"
)

// Learning match reasons recorded in document metadata.
const (
	ReasonFingerprint      = "fingerprint"
	ReasonBrokerSimilarity = "broker_similarity"
)

// Match is a prior corrected draft selected for reuse.
type Match struct {
	Example    examples.Example
	Reason     string
	Similarity float64
}

var brokerLine = regexp.MustCompile(`(?im)^[ \t]*broker(?:[ \t]+name)?[ \t]*[:\-][ \t]*(\S.*?)[ \t]*$`)

// BrokerName returns the value of the first "Broker: <name>" line, or "".
func BrokerName(text string) string {
	m := brokerLine.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

// Tokens returns the set of lowercase alphanumeric tokens of at least three characters.
func Tokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenSplit.Split(strings.ToLower(text), -1) {
		if len(tok) >= 3 {
			set[tok] = struct{}{}
		}
	}
	return set
}

// Jaccard returns |a ∩ b| / |a ∪ b| over the token sets of a and b.
func Jaccard(a, b string) float64 {
	return jaccard(Tokens(a), Tokens(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Matcher finds a reusable corrected draft among a tenant's examples.
type Matcher struct {
	minSimilarity float64
}

// NewMatcher creates a Matcher requiring at least minSimilarity for broker matches.
func NewMatcher(minSimilarity float64) *Matcher {
	return &Matcher{minSimilarity: minSimilarity}
}

// Match returns the example to reuse, preferring an exact fingerprint match,
// then the most similar example from the same broker. Ties keep the first
// example encountered.
func (m *Matcher) Match(exs []examples.Example, fingerprint, text string) (Match, bool) {
	if fingerprint != "" {
		for _, ex := range exs {
			if ex.DocFingerprint != nil && *ex.DocFingerprint == fingerprint {
				return Match{Example: ex, Reason: ReasonFingerprint, Similarity: 1}, true
			}
		}
	}

	broker := BrokerName(text)
	if broker == "" {
		return Match{}, false
	}

	tokens := Tokens(text)
	var (
		best  Match
		found bool
	)
	for _, ex := range exs {
		if !strings.EqualFold(exampleBroker(ex), broker) {
			continue
		}
		score := jaccard(tokens, Tokens(ex.ExtractedText))
		if score < m.minSimilarity {
			continue
		}
		if !found || score > best.Similarity {
			best = Match{Example: ex, Reason: ReasonBrokerSimilarity, Similarity: score}
			found = true
		}
	}
	return best, found
}

func exampleBroker(ex examples.Example) string {
	if ex.BrokerName != nil && strings.TrimSpace(*ex.BrokerName) != "" {
		return strings.TrimSpace(*ex.BrokerName)
	}
	return BrokerName(ex.ExtractedText)
}

// Synonyms maps a field to extra normalized labels learned from corrections.
type Synonyms map[Field][]string

// Count returns the total number of learned labels.
func (s Synonyms) Count() int {
	n := 0
	for _, labels := range s {
		n += len(labels)
	}
	return n
}

var (
	colonPair = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 .#/&()'_]{1,39}?)\s*:\s*(\S.*?)\s*$`)
	dashPair  = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9 .#/&()'_]{1,39}?)\s+-\s+(\S.*?)\s*$`)
)

var numericFields = []Field{FieldRate, FieldMiles, FieldPalletCount, FieldWeightLbs}

// BuildSynonyms mines "Label: value" and "Label - value" lines from each
// example whose value equals the corresponding field of the example's
// corrected draft. Labels are deduplicated and capped at limit per field.
func BuildSynonyms(exs []examples.Example, limit int) Synonyms {
	syn := make(Synonyms)
	for _, ex := range exs {
		values := draftValues(ex.CorrectedDraft)
		for _, line := range splitLines(ex.ExtractedText) {
			m := colonPair.FindStringSubmatch(line)
			if m == nil {
				m = dashPair.FindStringSubmatch(line)
			}
			if m == nil {
				continue
			}
			label := normalizeLabel(m[1])
			if label == "" {
				continue
			}
			for field, want := range values {
				if !valueMatches(field, m[2], want) {
					continue
				}
				if slices.Contains(builtin[field].exact, label) || slices.Contains(syn[field], label) {
					continue
				}
				if len(syn[field]) < limit {
					syn[field] = append(syn[field], label)
				}
			}
		}
	}
	return syn
}

func valueMatches(field Field, got, want string) bool {
	if slices.Contains(numericFields, field) {
		a, okA := parseNumber(got)
		b, okB := parseNumber(want)
		return okA && okB && math.Abs(a-b) < 0.005
	}
	return strings.EqualFold(strings.Join(strings.Fields(got), " "), strings.Join(strings.Fields(want), " "))
}

// draftValues flattens the non-empty mineable values of d by field.
func draftValues(d drafts.Draft) map[Field]string {
	v := make(map[Field]string)
	set := func(f Field, s string) {
		if len(strings.TrimSpace(s)) >= 2 {
			v[f] = s
		}
	}
	setPtr := func(f Field, s *string) {
		if s != nil {
			set(f, *s)
		}
	}
	setNum := func(f Field, n *float64) {
		if n != nil {
			v[f] = strconv.FormatFloat(*n, 'f', -1, 64)
		}
	}
	setInt := func(f Field, n *int) {
		if n != nil {
			v[f] = strconv.Itoa(*n)
		}
	}

	if !isPlaceholder(d.LoadNumber) {
		set(FieldLoadNumber, d.LoadNumber)
	}
	set(FieldCustomerName, d.CustomerName)
	setPtr(FieldCustomerRef, d.CustomerRef)
	setPtr(FieldExternalTripID, d.ExternalTripID)
	setPtr(FieldTruckUnit, d.TruckUnit)
	setPtr(FieldTrailerUnit, d.TrailerUnit)
	setNum(FieldRate, d.Rate)
	setPtr(FieldSalesRepName, d.SalesRepName)
	setPtr(FieldDropName, d.DropName)
	setNum(FieldMiles, d.Miles)
	setPtr(FieldShipperRef, d.ShipperReferenceNumber)
	setPtr(FieldConsigneeRef, d.ConsigneeReferenceNumber)
	setInt(FieldPalletCount, d.PalletCount)
	setInt(FieldWeightLbs, d.WeightLbs)

	if s := d.Stop(drafts.StopPickup); s != nil {
		set(FieldPickupName, s.Name)
		set(FieldPickupAddress, s.Address1)
		set(FieldPickupCity, s.City)
	}
	if s := d.Stop(drafts.StopDelivery); s != nil {
		set(FieldDeliveryName, s.Name)
		set(FieldDeliveryAddr, s.Address1)
		set(FieldDeliveryCity, s.City)
	}
	return v
}
