package ecs_test

import (
	"fmt"

	"github.com/plus3/blockfall/ecs"
)

// ExampleStorage shows the append-only store. Every distinct set of
// component types gets its own archetype, and an EntityId stays valid for
// the life of the storage.
func ExampleStorage() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Health](registry)
	storage := ecs.NewStorage(registry)

	wall := storage.Spawn(Position{X: 1, Y: 1})
	storage.Spawn(Position{X: 2, Y: 1}, Health{Current: 3, Max: 3})

	ecs.ReadComponent[Position](storage, wall).Y = 5

	fmt.Println("entities:", storage.Len())
	fmt.Println("archetypes:", len(storage.Archetypes()))
	fmt.Println("wall:", *ecs.ReadComponent[Position](storage, wall))

	// Output:
	// entities: 2
	// archetypes: 2
	// wall: {1 5}
}

// ExampleStorage_Ref hands out one shared handle per entity. Holders compare
// refs by pointer and can release them; a released ref no longer resolves.
func ExampleStorage_Ref() {
	storage := ecs.NewStorage(newTestRegistry())
	id := storage.Spawn(Position{})

	active := storage.Ref(id)
	fmt.Println("shared:", active == storage.Ref(id))

	storage.Release(active)
	_, ok := storage.Resolve(active)
	fmt.Println("resolves after release:", ok)

	// Output:
	// shared: true
	// resolves after release: false
}

// ExampleCommands defers spawns and callbacks until the end of the frame.
func ExampleCommands() {
	storage := ecs.NewStorage(newTestRegistry())
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(spawnerSystem{})

	scheduler.Once(0)
	scheduler.Once(0)

	for _, p := range ecs.NewView[struct{ *Position }](storage).Iter() {
		fmt.Println("spawned on frame", p.X)
	}

	// Output:
	// spawned on frame 1
	// spawned on frame 2
}
