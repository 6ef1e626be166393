package demo

import (
	"context"
	"fmt"

	"roombook/pkg/logger"
	"roombook/pkg/model"
)

type Registrar interface {
	Register(ctx context.Context, input *model.ResourceInput) (*model.Resource, error)
}

var Requesters = []model.Requester{
	{ID: "U1", DisplayName: "Alice"},
	{ID: "U2", DisplayName: "Bob"},
}

var rooms = []model.ResourceInput{
	{DisplayName: "Orchid", Capacity: 6, Equipment: []string{"PROJECTOR", "WHITEBOARD"}, Location: "Floor 1"},
	{DisplayName: "Lotus", Capacity: 12, Equipment: []string{"VC", "PROJECTOR"}, Location: "Floor 2"},
	{DisplayName: "Iris", Capacity: 4, Equipment: []string{"WHITEBOARD"}, Location: "Floor 1"},
}

// Seed registers the demo rooms and returns them in registration order.
func Seed(ctx context.Context, registrar Registrar, log *logger.Logger) ([]*model.Resource, error) {
	seeded := make([]*model.Resource, 0, len(rooms))
	for _, room := range rooms {
		input := room
		input.Equipment = append([]string(nil), room.Equipment...)

		r, err := registrar.Register(ctx, &input)
		if err != nil {
			return nil, fmt.Errorf("seed room %q: %w", room.DisplayName, err)
		}
		seeded = append(seeded, r)
		log.Info("Demo room registered", "id", r.ID, "name", r.DisplayName, "capacity", r.Capacity)
	}

	for _, u := range Requesters {
		log.Info("Demo requester available", "id", u.ID, "name", u.DisplayName)
	}
	return seeded, nil
}
