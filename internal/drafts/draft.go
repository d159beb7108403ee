// Package drafts defines the structured load draft produced from a load
// confirmation document, its normalization rules, and its JSON Schema.
package drafts

import (
	"regexp"
	"strings"
)

// StopType distinguishes the two ends of a load.
type StopType string

const (
	StopPickup   StopType = "PICKUP"
	StopDelivery StopType = "DELIVERY"
)

// Defaults applied to drafts built from raw text.
const (
	DefaultStatus   = "DRAFT"
	DefaultLoadType = "BROKERED"
)

// Stop is one end of a load. ApptStart and ApptEnd use the YYYY-MM-DDTHH:MM form.
type Stop struct {
	Type      StopType `json:"type"`
	Name      string   `json:"name"`
	Address1  string   `json:"address1"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Zip       string   `json:"zip"`
	ApptStart *string  `json:"apptStart"`
	ApptEnd   *string  `json:"apptEnd"`
}

// Draft is the structured load record extracted from a document.
// Optional fields are pointers and marshal as null when absent.
type Draft struct {
	LoadNumber               string   `json:"loadNumber"`
	Status                   string   `json:"status"`
	LoadType                 string   `json:"loadType"`
	CustomerName             string   `json:"customerName"`
	CustomerRef              *string  `json:"customerRef"`
	ExternalTripID           *string  `json:"externalTripId"`
	TruckUnit                *string  `json:"truckUnit"`
	TrailerUnit              *string  `json:"trailerUnit"`
	Rate                     *float64 `json:"rate"`
	SalesRepName             *string  `json:"salesRepName"`
	DropName                 *string  `json:"dropName"`
	Miles                    *float64 `json:"miles"`
	DesiredInvoiceDate       *string  `json:"desiredInvoiceDate"`
	ShipperReferenceNumber   *string  `json:"shipperReferenceNumber"`
	ConsigneeReferenceNumber *string  `json:"consigneeReferenceNumber"`
	PalletCount              *int     `json:"palletCount"`
	WeightLbs                *int     `json:"weightLbs"`
	Stops                    []Stop   `json:"stops"`
}

// New returns an empty draft with the default status, load type, and an
// unfilled pickup and delivery stop.
func New(loadNumber string) Draft {
	return Draft{
		LoadNumber: loadNumber,
		Status:     DefaultStatus,
		LoadType:   DefaultLoadType,
		Stops: []Stop{
			{Type: StopPickup},
			{Type: StopDelivery},
		},
	}
}

// Stop returns the first stop of type t, or nil.
func (d *Draft) Stop(t StopType) *Stop {
	for i := range d.Stops {
		if d.Stops[i].Type == t {
			return &d.Stops[i]
		}
	}
	return nil
}

// Clone returns a deep copy of d.
func (d Draft) Clone() Draft {
	out := d
	out.CustomerRef = cloneString(d.CustomerRef)
	out.ExternalTripID = cloneString(d.ExternalTripID)
	out.TruckUnit = cloneString(d.TruckUnit)
	out.TrailerUnit = cloneString(d.TrailerUnit)
	out.Rate = cloneFloat(d.Rate)
	out.SalesRepName = cloneString(d.SalesRepName)
	out.DropName = cloneString(d.DropName)
	out.Miles = cloneFloat(d.Miles)
	out.DesiredInvoiceDate = cloneString(d.DesiredInvoiceDate)
	out.ShipperReferenceNumber = cloneString(d.ShipperReferenceNumber)
	out.ConsigneeReferenceNumber = cloneString(d.ConsigneeReferenceNumber)
	out.PalletCount = cloneInt(d.PalletCount)
	out.WeightLbs = cloneInt(d.WeightLbs)
	if d.Stops != nil {
		out.Stops = make([]Stop, len(d.Stops))
		for i, s := range d.Stops {
			s.ApptStart = cloneString(s.ApptStart)
			s.ApptEnd = cloneString(s.ApptEnd)
			out.Stops[i] = s
		}
	}
	return out
}

var (
	spaceRun = regexp.MustCompile(`\s+`)
	nonDigit = regexp.MustCompile(`\D`)
)

// Normalize returns a copy of d with collapsed whitespace, upper-cased state
// codes, and zip codes reduced to their first five digits.
func Normalize(d Draft) Draft {
	out := d.Clone()
	out.LoadNumber = clean(out.LoadNumber)
	out.Status = clean(out.Status)
	out.LoadType = clean(out.LoadType)
	out.CustomerName = clean(out.CustomerName)
	for _, p := range []**string{
		&out.CustomerRef,
		&out.ExternalTripID,
		&out.TruckUnit,
		&out.TrailerUnit,
		&out.SalesRepName,
		&out.DropName,
		&out.DesiredInvoiceDate,
		&out.ShipperReferenceNumber,
		&out.ConsigneeReferenceNumber,
	} {
		*p = cleanOptional(*p)
	}
	for i := range out.Stops {
		s := &out.Stops[i]
		s.Name = clean(s.Name)
		s.Address1 = clean(s.Address1)
		s.City = clean(s.City)
		s.State = strings.ToUpper(clean(s.State))
		s.Zip = normalizeZip(s.Zip)
	}
	return out
}

func clean(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

func cleanOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := clean(*s)
	if v == "" {
		return nil
	}
	return &v
}

func normalizeZip(zip string) string {
	digits := nonDigit.ReplaceAllString(zip, "")
	if len(digits) >= 5 {
		return digits[:5]
	}
	return clean(zip)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneInt(n *int) *int {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
