// ABOUTME: Deep copies for models that carry maps, slices or pointers
// ABOUTME: Lets the store hand out values callers can change without touching stored state
package models

import (
	"maps"
	"slices"
)

// Clone returns a matrix that shares no inner maps with p.
func (p Permissions) Clone() Permissions {
	if p == nil {
		return nil
	}
	out := make(Permissions, len(p))
	for res, actions := range p {
		out[res] = maps.Clone(actions)
	}
	return out
}

func (f FilterPreset) Clone() FilterPreset {
	return FilterPreset{
		Owner:        slices.Clone(f.Owner),
		ProjectTypes: slices.Clone(f.ProjectTypes),
		Locations:    slices.Clone(f.Locations),
		Teams:        slices.Clone(f.Teams),
	}
}

// Clone returns a deep copy of the user.
func (u User) Clone() User {
	out := u
	out.FilterPreset = u.FilterPreset.Clone()
	out.Permissions = u.Permissions.Clone()
	if u.DashboardConfig != nil {
		dc := *u.DashboardConfig
		dc.ShowKPIs = slices.Clone(dc.ShowKPIs)
		out.DashboardConfig = &dc
	}
	if u.LastLogin != nil {
		t := *u.LastLogin
		out.LastLogin = &t
	}
	return out
}

func (s Scope) Clone() Scope {
	s.AssignedUsers = slices.Clone(s.AssignedUsers)
	return s
}

func (c Contact) Clone() Contact {
	c.Scope = c.Scope.Clone()
	return c
}

func (m Meeting) Clone() Meeting {
	m.Scope = m.Scope.Clone()
	return m
}

func (t Task) Clone() Task {
	t.Scope = t.Scope.Clone()
	return t
}

// CloneAll deep-copies a slice of cloneable values.
func CloneAll[T interface{ Clone() T }](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
