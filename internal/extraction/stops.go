package extraction

import (
	"slices"
	"strings"

	"github.com/JaimeStill/loadextract/internal/drafts"
)

type stopFields struct {
	name, address, city, state, zip Field
	headers                         []string
}

var (
	pickupFields = stopFields{
		name: FieldPickupName, address: FieldPickupAddress,
		city: FieldPickupCity, state: FieldPickupState, zip: FieldPickupZip,
		headers: pickupHeaders,
	}
	deliveryFields = stopFields{
		name: FieldDeliveryName, address: FieldDeliveryAddr,
		city: FieldDeliveryCity, state: FieldDeliveryState, zip: FieldDeliveryZip,
		headers: deliveryHeaders,
	}
)

// stops fills the pickup and delivery stops of d from their text blocks,
// explicit stop labels, and appointment labels.
func (x *FieldExtractor) stops(d *drafts.Draft) {
	pickup := d.Stop(drafts.StopPickup)
	delivery := d.Stop(drafts.StopDelivery)

	x.fillStop(pickup, pickupFields)
	x.fillStop(delivery, deliveryFields)

	puDate, _ := x.value(FieldPickupDate)
	puFrom, _ := x.value(FieldPickupTimeFrom)
	puTo, _ := x.value(FieldPickupTimeTo)
	pickup.ApptStart = appointment(puDate, puFrom)
	if puTo != "" {
		pickup.ApptEnd = appointment(puDate, puTo)
	}

	delFrom, _ := x.value(FieldDeliveryDateF)
	delTo, _ := x.value(FieldDeliveryDateT)
	delTimeFrom, _ := x.value(FieldDeliveryTimeF)
	delTimeTo, _ := x.value(FieldDeliveryTimeT)
	if delTo == "" {
		delTo = delFrom
	}
	delivery.ApptStart = appointment(delFrom, delTimeFrom)
	if delTimeTo != "" || delTo != delFrom {
		delivery.ApptEnd = appointment(delTo, delTimeTo)
	}
}

func (x *FieldExtractor) fillStop(stop *drafts.Stop, f stopFields) {
	if i, inline, ok := x.blockHeader(f); ok {
		x.fillFromBlock(stop, i, inline)
	}

	if v, ok := x.explicit(f.name); ok {
		stop.Name = v
	}
	if v, ok := x.explicit(f.address); ok {
		stop.Address1 = v
	}
	if v, ok := x.explicit(f.city); ok {
		if c, ok := parseCityLine(v); ok {
			stop.City, stop.State = c.City, c.State
			if c.Zip != "" {
				stop.Zip = c.Zip
			}
		} else {
			stop.City = v
		}
	}
	if v, ok := x.explicit(f.state); ok {
		stop.State = strings.ToUpper(v)
	}
	if v, ok := x.explicit(f.zip); ok {
		stop.Zip = v
	}
}

// explicit resolves a stop field only from labels that are not block headers,
// so "Shipper: Dock 4" feeds the block rather than overriding it.
func (x *FieldExtractor) explicit(f Field) (string, bool) {
	p, ok := x.lookup(f)
	if !ok {
		return "", false
	}
	if slices.Contains(pickupHeaders, p.Label) || slices.Contains(deliveryHeaders, p.Label) {
		return "", false
	}
	return p.Value, true
}

// blockHeader finds the first line introducing a stop block. It returns the
// line index and any inline value following the label.
func (x *FieldExtractor) blockHeader(f stopFields) (int, string, bool) {
	headers := append(slices.Clone(f.headers), x.synonyms[f.name]...)
	for i, line := range x.lines {
		label, value, ok := splitPair(line)
		if !ok {
			label, value = line, ""
		}
		if slices.Contains(headers, headerKey(normalizeLabel(label))) {
			return i, value, true
		}
	}
	return 0, "", false
}

func headerKey(label string) string {
	tokens := strings.Fields(label)
	for len(tokens) > 1 && slices.Contains(headerNoise, tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// fillFromBlock reads name, address, and city lines following a header.
func (x *FieldExtractor) fillFromBlock(stop *drafts.Stop, header int, inline string) {
	next := x.followingLines(header, 3)

	name := strings.TrimSpace(inline)
	if name == "" {
		if len(next) == 0 {
			return
		}
		name, next = next[0], next[1:]
	}
	stop.Name = name

	if len(next) == 0 {
		return
	}
	if c, ok := parseCityLine(next[0]); ok {
		stop.City, stop.State, stop.Zip = c.City, c.State, c.Zip
		return
	}
	stop.Address1 = next[0]

	if len(next) > 1 {
		if c, ok := parseCityLine(next[1]); ok {
			stop.City, stop.State, stop.Zip = c.City, c.State, c.Zip
		}
	}
}

// followingLines returns up to n non-blank, unlabelled lines after index i,
// stopping at the first labelled line.
func (x *FieldExtractor) followingLines(i, n int) []string {
	var out []string
	for j := i + 1; j < len(x.lines) && len(out) < n; j++ {
		line := strings.TrimSpace(x.lines[j])
		if line == "" {
			continue
		}
		if _, v, ok := splitLabel(line); ok && v != "" {
			break
		}
		out = append(out, line)
	}
	return out
}
