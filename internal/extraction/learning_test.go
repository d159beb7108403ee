package extraction_test

import (
	"math"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/loadextract/internal/drafts"
	"github.com/JaimeStill/loadextract/internal/examples"
	"github.com/JaimeStill/loadextract/internal/extraction"
)

const brokerText = "Broker: Apex Logistics\nalpha bravo charlie delta echo"

func TestBrokerName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Broker: Apex Logistics\nLoad #: 1", "Apex Logistics"},
		{"  broker name - Summit Freight  ", "Summit Freight"},
		{"Rate: 100\nBROKER:   Lone Star Brokerage", "Lone Star Brokerage"},
		{"Brokerage fee: 10", ""},
		{"no broker line", ""},
	}

	for _, tt := range tests {
		if got := extraction.BrokerName(tt.text); got != tt.want {
			t.Errorf("BrokerName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "alpha bravo", "Alpha BRAVO", 1},
		{"short tokens ignored", "an ox alpha", "alpha", 1},
		{"disjoint", "alpha", "bravo", 0},
		{"both empty", "", "", 0},
		{"eight of ten", brokerText, brokerText + "\nfoxtrot golf", 0.8},
		{"half", brokerText, brokerText + "\nhotel india juliet kilo lima mike november oscar", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extraction.Jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Jaccard = %v, want %v", got, tt.want)
			}
		})
	}
}

func corrected(loadNumber string) drafts.Draft {
	d := drafts.New(loadNumber)
	d.CustomerName = "Acme Foods"
	return d
}

func TestMatcherFingerprint(t *testing.T) {
	fp := "3f2a"
	exs := []examples.Example{
		{ID: uuid.New(), ExtractedText: "other", CorrectedDraft: corrected("A-1")},
		{ID: uuid.New(), DocFingerprint: &fp, ExtractedText: "unrelated", CorrectedDraft: corrected("B-2")},
	}

	m, ok := extraction.NewMatcher(0.78).Match(exs, fp, "completely different text")
	if !ok {
		t.Fatal("Match ok = false, want fingerprint match")
	}
	if m.Reason != extraction.ReasonFingerprint {
		t.Errorf("Reason = %q, want %q", m.Reason, extraction.ReasonFingerprint)
	}
	if m.Example.CorrectedDraft.LoadNumber != "B-2" {
		t.Errorf("matched %q, want B-2", m.Example.CorrectedDraft.LoadNumber)
	}
}

func TestMatcherSimilarityThreshold(t *testing.T) {
	tests := []struct {
		name    string
		example string
		broker  *string
		match   bool
	}{
		{"0.80 matches", brokerText + "\nfoxtrot golf", nil, true},
		{"0.50 does not match", brokerText + "\nhotel india juliet kilo lima mike november oscar", nil, false},
		{"broker from example field", "alpha bravo charlie delta echo foxtrot golf broker apex logistics", ptr("APEX LOGISTICS"), true},
		{"different broker", "Broker: Summit Freight\nalpha bravo charlie delta echo", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exs := []examples.Example{{
				ID:             uuid.New(),
				BrokerName:     tt.broker,
				ExtractedText:  tt.example,
				CorrectedDraft: corrected("LC-1"),
			}}

			m, ok := extraction.NewMatcher(0.78).Match(exs, "", brokerText)
			if ok != tt.match {
				t.Fatalf("Match ok = %v, want %v (similarity %v)", ok, tt.match, extraction.Jaccard(brokerText, tt.example))
			}
			if ok && m.Reason != extraction.ReasonBrokerSimilarity {
				t.Errorf("Reason = %q, want %q", m.Reason, extraction.ReasonBrokerSimilarity)
			}
		})
	}
}

func TestMatcherPrefersHighestThenFirst(t *testing.T) {
	exs := []examples.Example{
		{ExtractedText: brokerText + "\nfoxtrot golf", CorrectedDraft: corrected("LOW")},
		{ExtractedText: brokerText, CorrectedDraft: corrected("BEST-1")},
		{ExtractedText: brokerText, CorrectedDraft: corrected("BEST-2")},
	}

	m, ok := extraction.NewMatcher(0.78).Match(exs, "", brokerText)
	if !ok {
		t.Fatal("Match ok = false")
	}
	if m.Example.CorrectedDraft.LoadNumber != "BEST-1" {
		t.Errorf("matched %q, want BEST-1", m.Example.CorrectedDraft.LoadNumber)
	}
	if m.Similarity != 1 {
		t.Errorf("Similarity = %v, want 1", m.Similarity)
	}
}

func TestBuildSynonyms(t *testing.T) {
	d := drafts.New("DOC-12345678")
	d.CustomerName = "Zephyr Goods"
	d.Rate = ptr(2400.0)
	d.Stop(drafts.StopPickup).Name = "Grain Co-op"

	exs := []examples.Example{{
		ExtractedText:  "Account Holder: Zephyr Goods\nTotal Due: $2,400.00\nCustomer: Zephyr Goods\nLoading Facility - Grain Co-op\nMemo: nothing",
		CorrectedDraft: d,
	}}

	syn := extraction.BuildSynonyms(exs, 8)

	if got := syn[extraction.FieldCustomerName]; !slices.Equal(got, []string{"account holder"}) {
		t.Errorf("customerName synonyms = %v, want [account holder]", got)
	}
	if got := syn[extraction.FieldRate]; !slices.Equal(got, []string{"total due"}) {
		t.Errorf("rate synonyms = %v, want [total due]", got)
	}
	if got := syn[extraction.FieldPickupName]; !slices.Equal(got, []string{"loading facility"}) {
		t.Errorf("pickupName synonyms = %v, want [loading facility]", got)
	}
	if _, ok := syn[extraction.FieldLoadNumber]; ok {
		t.Error("placeholder load number should not produce synonyms")
	}
	if syn.Count() != 3 {
		t.Errorf("Count = %d, want 3", syn.Count())
	}
}

func TestBuildSynonymsCap(t *testing.T) {
	d := drafts.New("DOC-12345678")
	d.CustomerName = "Zephyr Goods"

	exs := []examples.Example{{
		ExtractedText:  "Sold To: Zephyr Goods\nAccount: Zephyr Goods\nPayer: Zephyr Goods\nSold To: Zephyr Goods",
		CorrectedDraft: d,
	}}

	syn := extraction.BuildSynonyms(exs, 2)
	if got := syn[extraction.FieldCustomerName]; !slices.Equal(got, []string{"sold to", "account"}) {
		t.Errorf("customerName synonyms = %v, want [sold to account]", got)
	}
}
