package domain

// JudgedHistory records parameter sets the user accepted or rejected.
// It lives for the lifetime of the process only.
type JudgedHistory struct {
	accepted []ParameterSet
	rejected []ParameterSet
}

// Accept appends p to the accepted list.
func (h *JudgedHistory) Accept(p ParameterSet) {
	h.accepted = append(h.accepted, p)
}

// Reject appends p to the rejected list.
func (h *JudgedHistory) Reject(p ParameterSet) {
	h.rejected = append(h.rejected, p)
}

// Accepted returns a copy of the accepted entries, oldest first.
func (h *JudgedHistory) Accepted() []ParameterSet {
	if h == nil {
		return nil
	}
	return append([]ParameterSet(nil), h.accepted...)
}

// Rejected returns a copy of the rejected entries, oldest first.
func (h *JudgedHistory) Rejected() []ParameterSet {
	if h == nil {
		return nil
	}
	return append([]ParameterSet(nil), h.rejected...)
}

// RecentAccepted returns up to n of the most recently accepted entries.
func (h *JudgedHistory) RecentAccepted(n int) []ParameterSet {
	all := h.Accepted()
	if len(all) > n {
		all = all[len(all)-n:]
	}
	return all
}
