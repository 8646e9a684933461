package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/artpar/pagekit/adapters/idgen"
	"github.com/artpar/pagekit/ports"
)

func TestResourceStore_SaveAssignsID(t *testing.T) {
	s := NewResourceStore(idgen.NewSequential("w"))

	saved, err := s.Save(context.Background(), ports.Item{"name": "Sprocket"})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if saved.ID() != "w1" {
		t.Errorf("assigned id = %q, want w1", saved.ID())
	}

	got, err := s.Get(context.Background(), "w1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got["name"] != "Sprocket" {
		t.Errorf("name = %v, want Sprocket", got["name"])
	}
}

func TestResourceStore_SaveUpdates(t *testing.T) {
	s := NewResourceStore(idgen.NewSequential("w"))

	saved, _ := s.Save(context.Background(), ports.Item{"name": "Sprocket"})
	saved["name"] = "Cog"
	if _, err := s.Save(context.Background(), saved); err != nil {
		t.Fatalf("update Save() error = %v", err)
	}

	got, _ := s.Get(context.Background(), saved.ID())
	if got["name"] != "Cog" {
		t.Errorf("name = %v, want Cog", got["name"])
	}
}

func TestResourceStore_GetIsolation(t *testing.T) {
	s := NewResourceStore(idgen.NewSequential("w"))
	saved, _ := s.Save(context.Background(), ports.Item{"name": "Sprocket"})

	got, _ := s.Get(context.Background(), saved.ID())
	got["name"] = "mutated"

	again, _ := s.Get(context.Background(), saved.ID())
	if again["name"] != "Sprocket" {
		t.Errorf("store leaked a shared reference: name = %v", again["name"])
	}
}

func TestResourceStore_GetMissing(t *testing.T) {
	s := NewResourceStore(idgen.NewSequential("w"))

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestResourceStore_Remove(t *testing.T) {
	s := NewResourceStore(idgen.NewSequential("w"))
	saved, _ := s.Save(context.Background(), ports.Item{"name": "Sprocket"})

	if err := s.Remove(context.Background(), saved.ID()); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(context.Background(), saved.ID()); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("second Remove() error = %v, want ErrNotFound", err)
	}
}

func TestResourceStore_ListOrdered(t *testing.T) {
	s := NewResourceStore(idgen.NewSequential("w"))
	s.Save(context.Background(), ports.Item{"id": "b", "name": "second"})
	s.Save(context.Background(), ports.Item{"id": "a", "name": "first"})

	items, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 || items[0].ID() != "a" || items[1].ID() != "b" {
		t.Errorf("List() = %v, want ordered by id", items)
	}
}
