package domain

import (
	"cmp"
	"slices"
)

// NearbyRadiusMiles bounds the "nearby" count in directory statistics.
const NearbyRadiusMiles = 10.0

// Filter holds the user-selected directory criteria.
type Filter struct {
	OpenNow     bool      `json:"open_now"`
	Services    []Service `json:"services"`
	Accessible  bool      `json:"accessible"`
	PetFriendly bool      `json:"pet_friendly"`
	MaxDistance *float64  `json:"max_distance,omitempty"`
}

// ToggleService adds s to the required services, or removes it if present.
func (f Filter) ToggleService(s Service) Filter {
	if i := slices.Index(f.Services, s); i >= 0 {
		f.Services = slices.Delete(slices.Clone(f.Services), i, i+1)
		return f
	}
	f.Services = append(slices.Clone(f.Services), s)
	return f
}

// Clear resets every criterion.
func (f Filter) Clear() Filter {
	return Filter{}
}

// Active reports whether any criterion is set.
func (f Filter) Active() bool {
	return f.OpenNow || len(f.Services) > 0 || f.Accessible || f.PetFriendly || f.MaxDistance != nil
}

// Matches reports whether h satisfies every active predicate.
func (f Filter) Matches(h Hub) bool {
	if f.OpenNow && !h.Status.Accepting() {
		return false
	}
	if len(f.Services) > 0 && !h.HasServices(f.Services) {
		return false
	}
	if f.Accessible && !h.Accessible {
		return false
	}
	if f.PetFriendly && !h.PetFriendly {
		return false
	}
	if f.MaxDistance != nil && h.Distance != nil && *h.Distance > *f.MaxDistance {
		return false
	}
	return true
}

// FilterHubs returns the hubs that match f, preserving order.
func FilterHubs(hubs []Hub, f Filter) []Hub {
	out := make([]Hub, 0, len(hubs))
	for _, h := range hubs {
		if f.Matches(h) {
			out = append(out, h)
		}
	}
	return out
}

// StatusPriority ranks a status for presentation; lower sorts first.
// Unknown statuses rank after closed.
func StatusPriority(s HubStatus) int {
	switch s {
	case StatusOpen:
		return 0
	case StatusOpenLimited:
		return 1
	case StatusPlannedOpen:
		return 2
	case StatusAtCapacity:
		return 3
	case StatusClosed:
		return 4
	default:
		return 5
	}
}

// CompareHubs orders hubs by status priority, then distance when both carry
// one, then name.
func CompareHubs(a, b Hub) int {
	if c := cmp.Compare(StatusPriority(a.Status), StatusPriority(b.Status)); c != 0 {
		return c
	}
	if a.Distance != nil && b.Distance != nil {
		if c := cmp.Compare(*a.Distance, *b.Distance); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Name, b.Name)
}

// SortHubs returns a stably sorted copy of hubs in presentation order.
func SortHubs(hubs []Hub) []Hub {
	out := slices.Clone(hubs)
	slices.SortStableFunc(out, CompareHubs)
	return out
}

// Stats summarizes a hub list for the directory header.
type Stats struct {
	Total  int  `json:"total"`
	Open   int  `json:"open"`
	Nearby *int `json:"nearby"`
}

// Summarize counts hubs. Nearby is nil when hasLocation is false.
func Summarize(hubs []Hub, hasLocation bool) Stats {
	s := Stats{Total: len(hubs)}
	nearby := 0
	for _, h := range hubs {
		if h.Status.Accepting() {
			s.Open++
		}
		if h.Distance != nil && *h.Distance <= NearbyRadiusMiles {
			nearby++
		}
	}
	if hasLocation {
		s.Nearby = &nearby
	}
	return s
}
