package extraction

import (
	"regexp"
	"slices"
	"strings"
)

// Field names a value the extractor resolves by label. Draft fields use the
// draft JSON name; stop and appointment fields are extractor-internal.
type Field string

const (
	FieldLoadNumber         Field = "loadNumber"
	FieldLoadType           Field = "loadType"
	FieldCustomerName       Field = "customerName"
	FieldCustomerRef        Field = "customerRef"
	FieldExternalTripID     Field = "externalTripId"
	FieldTruckUnit          Field = "truckUnit"
	FieldTrailerUnit        Field = "trailerUnit"
	FieldRate               Field = "rate"
	FieldSalesRepName       Field = "salesRepName"
	FieldDropName           Field = "dropName"
	FieldMiles              Field = "miles"
	FieldDesiredInvoiceDate Field = "desiredInvoiceDate"
	FieldShipperRef         Field = "shipperReferenceNumber"
	FieldConsigneeRef       Field = "consigneeReferenceNumber"
	FieldPalletCount        Field = "palletCount"
	FieldWeightLbs          Field = "weightLbs"

	FieldPickupName    Field = "pickupName"
	FieldPickupAddress Field = "pickupAddress"
	FieldPickupCity    Field = "pickupCity"
	FieldPickupState   Field = "pickupState"
	FieldPickupZip     Field = "pickupZip"
	FieldDeliveryName  Field = "deliveryName"
	FieldDeliveryAddr  Field = "deliveryAddress"
	FieldDeliveryCity  Field = "deliveryCity"
	FieldDeliveryState Field = "deliveryState"
	FieldDeliveryZip   Field = "deliveryZip"

	FieldPickupDate     Field = "pickupDate"
	FieldPickupTimeFrom Field = "pickupTimeFrom"
	FieldPickupTimeTo   Field = "pickupTimeTo"
	FieldDeliveryDateF  Field = "deliveryDateFrom"
	FieldDeliveryDateT  Field = "deliveryDateTo"
	FieldDeliveryTimeF  Field = "deliveryTimeFrom"
	FieldDeliveryTimeT  Field = "deliveryTimeTo"
)

// vocabulary lists the built-in labels for a field. Exact labels match a
// normalized label verbatim; contains phrases match on word boundaries unless
// the label also carries an excluded word.
type vocabulary struct {
	exact    []string
	contains []string
	exclude  []string
}

var builtin = map[Field]vocabulary{
	FieldLoadNumber: {
		exact:    []string{"load #", "load number", "load no", "load", "load id", "confirmation #", "confirmation number", "conf #", "order #", "order number", "pro #", "pro number"},
		contains: []string{"load #", "load number", "confirmation number", "order number"},
		exclude:  []string{"type", "date", "ref", "reference"},
	},
	FieldLoadType: {
		exact: []string{"load type", "mode", "equipment", "equipment type", "trailer type"},
	},
	FieldCustomerName: {
		exact:    []string{"customer", "customer name", "bill to", "billed to", "bill to name"},
		contains: []string{"customer"},
		exclude:  []string{"ref", "reference", "#", "number", "no", "id", "po"},
	},
	FieldCustomerRef: {
		exact:    []string{"customer ref", "customer reference", "customer ref #", "customer #", "customer po", "reference #", "reference number", "ref #", "ref"},
		contains: []string{"customer ref", "customer reference"},
	},
	FieldExternalTripID: {
		exact: []string{"trip", "trip #", "trip id", "trip number", "external trip id"},
	},
	FieldTruckUnit: {
		exact:    []string{"truck", "truck #", "truck unit", "truck number", "tractor", "tractor #", "power unit", "unit #"},
		contains: []string{"truck #", "tractor #"},
	},
	FieldTrailerUnit: {
		exact:    []string{"trailer", "trailer #", "trailer unit", "trailer number"},
		contains: []string{"trailer #", "trailer number"},
		exclude:  []string{"type", "size"},
	},
	FieldRate: {
		exact:    []string{"rate", "total rate", "carrier rate", "line haul", "linehaul", "total", "total pay", "total carrier pay", "carrier pay", "amount", "flat rate"},
		contains: []string{"total rate", "carrier pay", "line haul", "linehaul"},
		exclude:  []string{"date", "per", "mile"},
	},
	FieldSalesRepName: {
		exact: []string{"sales rep", "salesperson", "sales person", "sales", "rep", "account manager", "dispatcher", "agent"},
	},
	FieldDropName: {
		exact: []string{"drop", "drop name", "drop location", "drop yard"},
	},
	FieldMiles: {
		exact:    []string{"miles", "total miles", "loaded miles", "distance", "mileage"},
		contains: []string{"miles"},
		exclude:  []string{"rate", "per"},
	},
	FieldDesiredInvoiceDate: {
		exact: []string{"invoice date", "desired invoice date", "bill date"},
	},
	FieldShipperRef: {
		exact:    []string{"shipper ref", "shipper ref #", "shipper reference", "shipper reference number", "shipper #", "shipper po", "pickup ref", "pickup #", "pickup number", "pu #", "pu ref", "po #", "po number", "bol", "bol #"},
		contains: []string{"shipper ref", "shipper reference", "pickup ref", "pu ref"},
	},
	FieldConsigneeRef: {
		exact:    []string{"consignee ref", "consignee ref #", "consignee reference", "consignee reference number", "consignee #", "consignee po", "delivery ref", "delivery #", "delivery number", "del #", "del ref", "receiver ref"},
		contains: []string{"consignee ref", "consignee reference", "delivery ref", "del ref"},
	},
	FieldPalletCount: {
		exact:    []string{"pallets", "pallet count", "pallet", "plts", "# pallets", "# of pallets", "pallet qty"},
		contains: []string{"pallet"},
		exclude:  []string{"type", "exchange"},
	},
	FieldWeightLbs: {
		exact:    []string{"weight", "weight lbs", "total weight", "gross weight", "lbs", "wt"},
		contains: []string{"weight"},
	},

	FieldPickupName: {
		exact: []string{"shipper", "shipper name", "pickup", "pick up", "pickup location", "pickup name", "origin", "ship from", "pu"},
	},
	FieldPickupAddress: {
		exact: []string{"shipper address", "pickup address", "origin address", "pu address"},
	},
	FieldPickupCity: {
		exact: []string{"shipper city", "pickup city", "origin city", "pu city"},
	},
	FieldPickupState: {
		exact: []string{"shipper state", "pickup state", "origin state", "pu state"},
	},
	FieldPickupZip: {
		exact: []string{"shipper zip", "pickup zip", "origin zip", "pu zip"},
	},
	FieldDeliveryName: {
		exact: []string{"consignee", "consignee name", "delivery", "delivery location", "delivery name", "receiver", "destination", "ship to", "del"},
	},
	FieldDeliveryAddr: {
		exact: []string{"consignee address", "delivery address", "destination address", "del address"},
	},
	FieldDeliveryCity: {
		exact: []string{"consignee city", "delivery city", "destination city", "del city"},
	},
	FieldDeliveryState: {
		exact: []string{"consignee state", "delivery state", "destination state", "del state"},
	},
	FieldDeliveryZip: {
		exact: []string{"consignee zip", "delivery zip", "destination zip", "del zip"},
	},

	FieldPickupDate: {
		exact: []string{"pu date", "pickup date", "pick up date", "ship date", "pu appt", "pickup appt", "pickup appointment", "pu date f", "pickup date from"},
	},
	FieldPickupTimeFrom: {
		exact: []string{"pu time f", "pu time from", "pu time", "pickup time", "pickup time from", "pick up time"},
	},
	FieldPickupTimeTo: {
		exact: []string{"pu time t", "pu time to", "pickup time to"},
	},
	FieldDeliveryDateF: {
		exact: []string{"del date f", "del date from", "del date", "delivery date", "delivery date from", "delivery appt", "del appt", "delivery appointment"},
	},
	FieldDeliveryDateT: {
		exact: []string{"del date t", "del date to", "delivery date to"},
	},
	FieldDeliveryTimeF: {
		exact: []string{"del time f", "del time from", "del time", "delivery time", "delivery time from"},
	},
	FieldDeliveryTimeT: {
		exact: []string{"del time t", "del time to", "delivery time to"},
	},
}

// Block header words for stop blocks. A header line's label, stripped of
// decoration words, must equal one of these.
var (
	pickupHeaders   = []string{"shipper", "pickup", "pick up", "origin", "ship from", "shipper information", "pickup information"}
	deliveryHeaders = []string{"consignee", "delivery", "receiver", "destination", "ship to", "consignee information", "delivery information"}
	headerNoise     = []string{"1", "#1", "info", "information", "location", "details", "name", "stop", "address"}
)

var nonLabelChar = regexp.MustCompile(`[^a-z0-9#]+`)

// normalizeLabel lowercases s and collapses everything but letters, digits,
// and '#' to single spaces. "#" is kept as its own token.
func normalizeLabel(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "#", " # ")
	s = nonLabelChar.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// containsPhrase reports whether phrase appears in label on token boundaries.
func containsPhrase(label, phrase string) bool {
	return strings.Contains(" "+label+" ", " "+phrase+" ")
}

func hasAnyWord(label string, words []string) bool {
	tokens := strings.Fields(label)
	for _, w := range words {
		if slices.Contains(tokens, w) {
			return true
		}
	}
	return false
}

// Pair is one "label: value" line.
type Pair struct {
	Line  int
	Label string
	Value string
}

var (
	labelShape = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 .#/&()'_-]*$`)
	dashSep    = regexp.MustCompile(`\s+[-–]\s+`)
	tightDash  = regexp.MustCompile(`^([A-Za-z][A-Za-z ]{1,39})-([A-Z0-9$#].*)$`)
)

// splitLabel splits a line into label and value on the first ':' or '#',
// or a spaced dash. The label must be 2-40 characters and start with a letter.
// ok is false when the line has no usable separator.
func splitLabel(line string) (label, value string, ok bool) {
	line = strings.TrimSpace(line)

	try := func(l, v string) bool {
		l = strings.TrimSpace(l)
		if len(l) < 2 || len(l) > 40 || !labelShape.MatchString(l) {
			return false
		}
		label, value = l, strings.TrimSpace(v)
		return true
	}

	if i := strings.Index(line, ":"); i > 0 && try(line[:i], line[i+1:]) {
		return label, value, true
	}
	if i := strings.Index(line, "#"); i > 0 && try(line[:i+1], line[i+1:]) {
		value = strings.TrimLeft(value, " :-")
		return label, value, true
	}
	if loc := dashSep.FindStringIndex(line); loc != nil && try(line[:loc[0]], line[loc[1]:]) {
		return label, value, true
	}
	return "", "", false
}

// splitPair is splitLabel plus an unspaced dash after a purely alphabetic
// label, as in "Customer-Acme Foods". The value must start with a capital,
// digit, '$' or '#' so hyphenated words like "Co-op" stay whole.
func splitPair(line string) (label, value string, ok bool) {
	if label, value, ok = splitLabel(line); ok {
		return label, value, true
	}
	if g := tightDash.FindStringSubmatch(strings.TrimSpace(line)); g != nil {
		return strings.TrimSpace(g[1]), strings.TrimSpace(g[2]), true
	}
	return "", "", false
}

// parsePairs extracts every labelled line with a non-empty value.
func parsePairs(lines []string) []Pair {
	var pairs []Pair
	for i, line := range lines {
		label, value, ok := splitPair(line)
		if !ok || value == "" {
			continue
		}
		pairs = append(pairs, Pair{Line: i, Label: normalizeLabel(label), Value: value})
	}
	return pairs
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	return strings.Split(text, "\n")
}
