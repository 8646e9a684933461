// Package endpoint describes REST-style resource types and their position in
// a parent/child hierarchy. Descriptors are registered once at startup and
// read for the lifetime of the process.
package endpoint

import "fmt"

// Descriptor describes a resource type. The Parent link forms a finite,
// acyclic chain terminating at a root descriptor with no parent.
type Descriptor struct {
	// Name is the singular, lowercase identifier, e.g. "widget".
	Name string

	// Parent is the owning resource type, or nil for a root resource.
	Parent *Descriptor

	// LabelField names the item field used as its display name.
	// Defaults to "name" when empty.
	LabelField string
}

// Plural returns the collection name, e.g. "widgets".
func (d *Descriptor) Plural() string {
	return Pluralize(d.Name)
}

// Title returns the pluralized, capitalized display title, e.g. "Widgets".
func (d *Descriptor) Title() string {
	return Capitalize(d.Plural())
}

// Label returns the field holding an item's display name.
func (d *Descriptor) Label() string {
	if d.LabelField == "" {
		return "name"
	}
	return d.LabelField
}

// ParentRefField returns the item field that stores the parent's id,
// e.g. "gadget_id" for a resource owned by "gadget". Empty for roots.
func (d *Descriptor) ParentRefField() string {
	if d.Parent == nil {
		return ""
	}
	return d.Parent.Name + "_id"
}

// Depth returns the number of ancestors above this descriptor.
func (d *Descriptor) Depth() int {
	n := 0
	for p := d.Parent; p != nil; p = p.Parent {
		n++
	}
	return n
}

// Chain returns the ancestor descriptors ordered from the immediate parent
// outward to the root. Empty for root resources.
func (d *Descriptor) Chain() []*Descriptor {
	var chain []*Descriptor
	for p := d.Parent; p != nil; p = p.Parent {
		chain = append(chain, p)
	}
	return chain
}

// Validate checks the parent chain for cycles. A cyclic chain is a
// programmer error in descriptor setup.
func (d *Descriptor) Validate() error {
	seen := map[*Descriptor]bool{d: true}
	for p := d.Parent; p != nil; p = p.Parent {
		if seen[p] {
			return fmt.Errorf("endpoint %q: parent chain contains a cycle at %q", d.Name, p.Name)
		}
		seen[p] = true
	}
	return nil
}

func (d *Descriptor) String() string {
	if d.Parent == nil {
		return d.Name
	}
	return d.Parent.String() + "/" + d.Name
}
