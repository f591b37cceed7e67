package contacts

import (
	"sort"
	"strings"

	"github.com/yildizm/PortTriage/internal/incident"
)

// ManagementModule is the group added to routing for escalating severities
const ManagementModule = "Management"

// RolePriority orders contacts during routing. A contact takes the index of
// the first entry found in its role, ignoring case; others sort last.
var RolePriority = []string{"L3 Engineer", "Engineer", "Lead", "Specialist", "Owner", "Manager"}

// Contact is one escalation contact
type Contact struct {
	Name   string `json:"name" yaml:"name"`
	Role   string `json:"role" yaml:"role"`
	Email  string `json:"email" yaml:"email"`
	Phone  string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Module string `json:"module" yaml:"module"`
}

// Group is the contact list of one module
type Group struct {
	Module   string    `json:"name" yaml:"name"`
	Contacts []Contact `json:"contacts" yaml:"contacts"`
}

// Directory holds contacts grouped by module in load order. It is read-only
// after construction.
type Directory struct {
	groups []Group
}

// NewDirectory builds a directory. Contacts without an email are dropped and
// every contact is stamped with its group's module.
func NewDirectory(groups []Group) *Directory {
	d := &Directory{}
	for _, g := range groups {
		kept := make([]Contact, 0, len(g.Contacts))
		for _, c := range g.Contacts {
			if strings.TrimSpace(c.Email) == "" {
				continue
			}
			c.Module = g.Module
			kept = append(kept, c)
		}
		d.groups = append(d.groups, Group{Module: g.Module, Contacts: kept})
	}
	return d
}

// Modules returns the loaded module names
func (d *Directory) Modules() []string {
	if d == nil {
		return nil
	}
	modules := make([]string, 0, len(d.groups))
	for _, g := range d.groups {
		modules = append(modules, g.Module)
	}
	return modules
}

// All returns every contact in load order
func (d *Directory) All() []Contact {
	if d == nil {
		return nil
	}
	var all []Contact
	for _, g := range d.groups {
		all = append(all, g.Contacts...)
	}
	return all
}

// Lookup returns the contacts of every module whose name contains module or
// is contained by it, ignoring case. An empty key matches nothing.
func (d *Directory) Lookup(module string) []Contact {
	key := strings.ToLower(strings.TrimSpace(module))
	if key == "" || d == nil {
		return nil
	}

	var found []Contact
	for _, g := range d.groups {
		name := strings.ToLower(g.Module)
		if name == "" {
			continue
		}
		if strings.Contains(name, key) || strings.Contains(key, name) {
			found = append(found, g.Contacts...)
		}
	}
	return found
}

// ByRole returns contacts whose role contains role, ignoring case
func (d *Directory) ByRole(role string) []Contact {
	needle := strings.ToLower(role)
	var found []Contact
	for _, c := range d.All() {
		if strings.Contains(strings.ToLower(c.Role), needle) {
			found = append(found, c)
		}
	}
	return found
}

// RouteIncident selects the contacts to escalate to. Management joins the
// module's contacts when severity is HIGH or CRITICAL. The result lists each
// email once and is stably ordered by RolePriority.
func (d *Directory) RouteIncident(module string, severity incident.Severity) []Contact {
	contacts := d.Lookup(module)
	if severity.Escalates() {
		contacts = append(contacts, d.Lookup(ManagementModule)...)
	}

	seen := make(map[string]bool, len(contacts))
	routed := make([]Contact, 0, len(contacts))
	for _, c := range contacts {
		key := strings.ToLower(strings.TrimSpace(c.Email))
		if seen[key] {
			continue
		}
		seen[key] = true
		routed = append(routed, c)
	}

	sort.SliceStable(routed, func(i, j int) bool {
		return Priority(routed[i].Role) < Priority(routed[j].Role)
	})

	return routed
}

// Priority returns the routing rank of a role
func Priority(role string) int {
	lower := strings.ToLower(role)
	for i, r := range RolePriority {
		if strings.Contains(lower, strings.ToLower(r)) {
			return i
		}
	}
	return len(RolePriority)
}
