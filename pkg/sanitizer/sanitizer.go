package sanitizer

import "roombook/pkg/model"

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// SanitizeResourceInput normalises a registration request in place.
func SanitizeResourceInput(in *model.ResourceInput) {
	in.DisplayName = NormalizeName(in.DisplayName)
	in.Location = NormalizeLocation(in.Location)
	in.Equipment = NormalizeEquipment(in.Equipment)
}

// SanitizeBookingRequest trims the identifiers of a booking request in place.
func SanitizeBookingRequest(req *model.BookingRequest) {
	p := Pipeline{TrimAndNormalize}
	req.RequesterID = p.Apply(req.RequesterID)
	req.ResourceID = p.Apply(req.ResourceID)
}
