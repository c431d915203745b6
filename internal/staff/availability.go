package staff

import "sort"

// Grouped is the availability result keyed by staff type.
type Grouped map[Type][]Staff

// Available computes who can be assigned on a day, given the active staff
// pool and the set of staff ids already taken by same-day bookings. A member
// is free iff they are the no-staff sentinel or not in the assigned set.
// Within each group the sentinel sorts first, the rest by name ascending.
func Available(pool []Staff, assigned map[string]bool) Grouped {
	out := Grouped{}
	for _, s := range pool {
		if s.ID != NoStaffNeededID && assigned[s.ID] {
			continue
		}
		out[s.StaffType] = append(out[s.StaffType], s)
	}
	for t := range out {
		group := out[t]
		sort.Slice(group, func(i, j int) bool {
			if group[i].ID == NoStaffNeededID {
				return true
			}
			if group[j].ID == NoStaffNeededID {
				return false
			}
			return group[i].Name < group[j].Name
		})
		out[t] = group
	}
	return out
}
