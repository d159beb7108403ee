package extraction_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/JaimeStill/loadextract/internal/drafts"
	"github.com/JaimeStill/loadextract/internal/extraction"
)

func completeDraft() drafts.Draft {
	d := drafts.New("LC-1")
	d.CustomerName = "Acme Foods"
	*d.Stop(drafts.StopPickup) = drafts.Stop{Type: drafts.StopPickup, Name: "Dock 4", City: "Dallas", State: "TX", ApptStart: ptr("2025-01-10T08:00")}
	*d.Stop(drafts.StopDelivery) = drafts.Stop{Type: drafts.StopDelivery, Name: "North DC", City: "Houston", State: "TX"}
	return d
}

func TestClassifyReadinessBoundary(t *testing.T) {
	d := completeDraft()

	r := extraction.Classify(d, extraction.Signals{})
	if r.Ready {
		t.Fatal("Ready = true without a delivery appointment")
	}
	if !slices.Contains(r.Flags, extraction.FlagMissingDeliveryAppt) {
		t.Errorf("Flags = %v, want %s", r.Flags, extraction.FlagMissingDeliveryAppt)
	}
	if !strings.Contains(r.Message(), "delivery appointment") {
		t.Errorf("Message = %q, want delivery appointment mentioned", r.Message())
	}

	d.Stop(drafts.StopDelivery).ApptStart = ptr("2025-01-11T00:00")

	r = extraction.Classify(d, extraction.Signals{})
	if !r.Ready {
		t.Fatalf("Ready = false, missing %v", r.Missing)
	}
	if r.ReviewRequired {
		t.Error("ReviewRequired = true for a ready generic draft")
	}
	if r.Message() != "" {
		t.Errorf("Message = %q, want empty", r.Message())
	}
}

func TestClassifyRequirements(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *drafts.Draft)
		flag   string
	}{
		{"short customer", func(d *drafts.Draft) { d.CustomerName = "A" }, extraction.FlagMissingCustomer},
		{"blank customer", func(d *drafts.Draft) { d.CustomerName = "   " }, extraction.FlagMissingCustomer},
		{"missing city", func(d *drafts.Draft) { d.Stop(drafts.StopPickup).City = "" }, extraction.FlagIncompleteStop},
		{"missing state", func(d *drafts.Draft) { d.Stop(drafts.StopDelivery).State = "" }, extraction.FlagIncompleteStop},
		{"one stop", func(d *drafts.Draft) { d.Stops = d.Stops[:1] }, extraction.FlagIncompleteStop},
		{"no pickup appointment", func(d *drafts.Draft) { d.Stop(drafts.StopPickup).ApptStart = nil }, extraction.FlagMissingPickupAppt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := completeDraft()
			d.Stop(drafts.StopDelivery).ApptStart = ptr("2025-01-11T09:00")
			tt.mutate(&d)

			r := extraction.Classify(d, extraction.Signals{})
			if r.Ready {
				t.Fatal("Ready = true, want false")
			}
			if !slices.Contains(r.Flags, tt.flag) {
				t.Errorf("Flags = %v, want %s", r.Flags, tt.flag)
			}
		})
	}
}

func TestClassifyConfidence(t *testing.T) {
	full := completeDraft()
	full.Stop(drafts.StopDelivery).ApptStart = ptr("2025-01-11T09:00")
	full.ShipperReferenceNumber = ptr("SR-1")
	full.ConsigneeReferenceNumber = ptr("CR-1")

	placeholder := drafts.New("DOC-ABCDEF12")

	tests := []struct {
		name   string
		draft  drafts.Draft
		sig    extraction.Signals
		score  float64
		review bool
	}{
		{"generic complete", full, extraction.Signals{}, 0.85, false},
		{"template capped", full, extraction.Signals{TemplateReused: true}, 0.98, true},
		{"empty placeholder", placeholder, extraction.Signals{}, 0.4, true},
		{"template placeholder", placeholder, extraction.Signals{TemplateReused: true}, 0.8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := extraction.Classify(tt.draft, tt.sig)
			if r.Score != tt.score {
				t.Errorf("Score = %v, want %v", r.Score, tt.score)
			}
			if r.ReviewRequired != tt.review {
				t.Errorf("ReviewRequired = %v, want %v", r.ReviewRequired, tt.review)
			}
		})
	}
}

func TestClassifyFlags(t *testing.T) {
	r := extraction.Classify(drafts.New("DOC-ABCDEF12"), extraction.Signals{OCRFailed: true, TemplateReused: true})

	for _, flag := range []string{
		extraction.FlagPlaceholderLoadNumber,
		extraction.FlagOCRFailed,
		extraction.FlagTemplateReused,
		extraction.FlagMissingCustomer,
	} {
		if !slices.Contains(r.Flags, flag) {
			t.Errorf("Flags = %v, missing %s", r.Flags, flag)
		}
	}
}
