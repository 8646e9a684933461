package endpoint

import "testing"

func TestDescriptor_Derivations(t *testing.T) {
	gadget := &Descriptor{Name: "gadget"}
	widget := &Descriptor{Name: "widget", Parent: gadget, LabelField: "title"}

	if got := widget.Plural(); got != "widgets" {
		t.Errorf("Plural() = %q, want widgets", got)
	}
	if got := widget.Title(); got != "Widgets" {
		t.Errorf("Title() = %q, want Widgets", got)
	}
	if got := widget.Label(); got != "title" {
		t.Errorf("Label() = %q, want title", got)
	}
	if got := gadget.Label(); got != "name" {
		t.Errorf("Label() default = %q, want name", got)
	}
	if got := widget.ParentRefField(); got != "gadget_id" {
		t.Errorf("ParentRefField() = %q, want gadget_id", got)
	}
	if got := gadget.ParentRefField(); got != "" {
		t.Errorf("root ParentRefField() = %q, want empty", got)
	}
	if got := widget.String(); got != "gadget/widget" {
		t.Errorf("String() = %q, want gadget/widget", got)
	}
}

func TestDescriptor_Chain(t *testing.T) {
	factory := &Descriptor{Name: "factory"}
	gadget := &Descriptor{Name: "gadget", Parent: factory}
	widget := &Descriptor{Name: "widget", Parent: gadget}

	if got := widget.Depth(); got != 2 {
		t.Errorf("Depth() = %d, want 2", got)
	}

	chain := widget.Chain()
	if len(chain) != 2 || chain[0] != gadget || chain[1] != factory {
		t.Errorf("Chain() = %v, want [gadget factory]", chain)
	}

	if got := factory.Depth(); got != 0 {
		t.Errorf("root Depth() = %d, want 0", got)
	}
	if chain := factory.Chain(); len(chain) != 0 {
		t.Errorf("root Chain() = %v, want empty", chain)
	}
}

func TestDescriptor_Validate(t *testing.T) {
	a := &Descriptor{Name: "a"}
	b := &Descriptor{Name: "b", Parent: a}
	if err := b.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	a.Parent = b
	if err := b.Validate(); err == nil {
		t.Error("Validate() should reject a cyclic parent chain")
	}
}
