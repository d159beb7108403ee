package extraction

import (
	"math"
	"strings"

	"github.com/JaimeStill/loadextract/internal/drafts"
)

// Readiness flags recorded in confidence metadata.
const (
	FlagMissingCustomer       = "MISSING_CUSTOMER"
	FlagMissingPickupAppt     = "MISSING_PICKUP_APPT"
	FlagMissingDeliveryAppt   = "MISSING_DELIVERY_APPT"
	FlagIncompleteStop        = "INCOMPLETE_STOP"
	FlagPlaceholderLoadNumber = "PLACEHOLDER_LOAD_NUMBER"
	FlagOCRFailed             = "OCR_FAILED"
	FlagTemplateReused        = "TEMPLATE_REUSED"
)

// Readiness is the classification of a draft.
type Readiness struct {
	Ready          bool
	Missing        []string
	Flags          []string
	Score          float64
	ReviewRequired bool
}

// Signals are the pipeline facts that affect confidence but not readiness.
type Signals struct {
	TemplateReused bool
	OCRFailed      bool
}

// Classify decides whether d can be created without review and estimates
// an informational confidence score.
//
// A draft is ready when it has a customer name of at least two characters,
// exactly two stops each with name, city, and state, and appointment starts
// on both a pickup and a delivery stop.
func Classify(d drafts.Draft, sig Signals) Readiness {
	var r Readiness

	if len([]rune(strings.TrimSpace(d.CustomerName))) < 2 {
		r.Missing = append(r.Missing, "customer name")
		r.Flags = append(r.Flags, FlagMissingCustomer)
	}

	if len(d.Stops) != 2 {
		r.Missing = append(r.Missing, "pickup and delivery stops")
		r.Flags = append(r.Flags, FlagIncompleteStop)
	} else {
		for _, s := range d.Stops {
			if blank(s.Name) || blank(s.City) || blank(s.State) {
				r.Missing = append(r.Missing, strings.ToLower(string(s.Type))+" name, city, and state")
				r.Flags = append(r.Flags, FlagIncompleteStop)
			}
		}
	}

	if !hasAppt(d, drafts.StopPickup) {
		r.Missing = append(r.Missing, "pickup appointment")
		r.Flags = append(r.Flags, FlagMissingPickupAppt)
	}
	if !hasAppt(d, drafts.StopDelivery) {
		r.Missing = append(r.Missing, "delivery appointment")
		r.Flags = append(r.Flags, FlagMissingDeliveryAppt)
	}

	r.Ready = len(r.Missing) == 0

	if isPlaceholder(d.LoadNumber) {
		r.Flags = append(r.Flags, FlagPlaceholderLoadNumber)
	}
	if sig.OCRFailed {
		r.Flags = append(r.Flags, FlagOCRFailed)
	}
	if sig.TemplateReused {
		r.Flags = append(r.Flags, FlagTemplateReused)
	}

	r.Score = confidence(d, sig.TemplateReused)
	r.ReviewRequired = !r.Ready || sig.TemplateReused
	return r
}

// Message summarizes why a draft needs review.
func (r Readiness) Message() string {
	if len(r.Missing) == 0 {
		return ""
	}
	return "review required: missing " + strings.Join(r.Missing, "; ")
}

func confidence(d drafts.Draft, reused bool) float64 {
	score := 0.4
	if reused {
		score = 0.8
	}
	if !isPlaceholder(d.LoadNumber) {
		score += 0.1
	}

	pickup := d.Stop(drafts.StopPickup)
	delivery := d.Stop(drafts.StopDelivery)

	present := []bool{
		!blank(d.CustomerName),
		pickup != nil && !blank(pickup.Name),
		delivery != nil && !blank(delivery.Name),
		pickup != nil && pickup.ApptStart != nil,
		delivery != nil && delivery.ApptStart != nil,
		d.ShipperReferenceNumber != nil && !blank(*d.ShipperReferenceNumber),
		d.ConsigneeReferenceNumber != nil && !blank(*d.ConsigneeReferenceNumber),
	}
	for _, ok := range present {
		if ok {
			score += 0.05
		}
	}

	return math.Round(math.Min(score, 0.98)*100) / 100
}

func hasAppt(d drafts.Draft, t drafts.StopType) bool {
	for _, s := range d.Stops {
		if s.Type == t && s.ApptStart != nil && !blank(*s.ApptStart) {
			return true
		}
	}
	return false
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
